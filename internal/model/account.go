package model

// AccountConfig describes one configured mailbox account. The password
// is never stored here; it lives in the system keyring under the
// account ID.
type AccountConfig struct {
	// ID is the unique identifier for this account instance.
	ID string `db:"id"`

	// Name is the user-defined label shown in the UI.
	Name string `db:"name"`

	// Host and Port locate the IMAP server.
	Host string `db:"host"`
	Port string `db:"port"`

	// Username is the login / mailbox address.
	Username string `db:"username"`

	// TLS selects implicit TLS; when false the client uses STARTTLS.
	TLS bool `db:"tls"`

	// Enabled controls whether this account can become the active session.
	Enabled bool `db:"enabled"`

	// FetchWindowDays bounds the inbox fetch to recent messages.
	FetchWindowDays int `db:"fetch_window_days"`

	// FetchLimit caps how many messages one refresh retrieves.
	FetchLimit int `db:"fetch_limit"`
}
