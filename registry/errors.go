package registry

import "fmt"

// AlreadyExistsError is returned when creating an account for a user that
// already has one.
type AlreadyExistsError struct {
	User string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("account already exists for %s", e.User)
}

// NotFoundError is returned when a user has no account.
type NotFoundError struct {
	User string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no account found for %s", e.User)
}

// AuthorizationDeniedError is returned when a requester may not view another
// user's account or history.
type AuthorizationDeniedError struct {
	Requester string
	Target    string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("%s is not allowed to view %s", e.Requester, e.Target)
}
