package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	user TEXT NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	amount REAL NOT NULL,
	price REAL NOT NULL,
	notional REAL NOT NULL,
	fee REAL NOT NULL,
	equity REAL NOT NULL,
	time DATETIME NOT NULL,
	comment TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user);
CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
`
