package pg

// sessionsSchema is the durable session aggregate table. Token columns hold
// SHA-256 digests; raw secrets are never written.
const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id                 UUID PRIMARY KEY,
	user_id            UUID,
	guest_id           TEXT        NOT NULL DEFAULT '',
	access_hash        TEXT        NOT NULL DEFAULT '',
	access_expires_at  TIMESTAMPTZ,
	refresh_hash       TEXT        NOT NULL DEFAULT '',
	refresh_expires_at TIMESTAMPTZ,
	csrf_hash          TEXT        NOT NULL DEFAULT '',
	csrf_expires_at    TIMESTAMPTZ,
	prev_refresh_hash  TEXT        NOT NULL DEFAULT '',
	expires_at         TIMESTAMPTZ NOT NULL,
	created_ip         TEXT        NOT NULL,
	last_ip            TEXT        NOT NULL DEFAULT '',
	data               BYTEA,
	revoked_at         TIMESTAMPTZ,
	revoked_by         TEXT        NOT NULL DEFAULT '',
	revoke_reason      TEXT        NOT NULL DEFAULT '',
	version            BIGINT      NOT NULL DEFAULT 1,
	created_at         TIMESTAMPTZ NOT NULL,
	created_by         TEXT        NOT NULL DEFAULT '',
	updated_at         TIMESTAMPTZ NOT NULL,
	updated_by         TEXT        NOT NULL DEFAULT '',
	updated_ip         TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_access_hash ON sessions (access_hash) WHERE access_hash <> '';
CREATE INDEX IF NOT EXISTS idx_sessions_refresh_hash ON sessions (refresh_hash) WHERE refresh_hash <> '';
CREATE INDEX IF NOT EXISTS idx_sessions_prev_refresh_hash ON sessions (prev_refresh_hash) WHERE prev_refresh_hash <> '';
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);
`

// payloadsSchema is the keyed session payload table behind the durable
// session store tier.
const payloadsSchema = `
CREATE TABLE IF NOT EXISTS session_payloads (
	key        TEXT        NOT NULL,
	namespace  TEXT        NOT NULL,
	data       TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS idx_session_payloads_updated_at ON session_payloads (updated_at);
`
