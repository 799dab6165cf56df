// Package repositories implements SQLite persistence for client state.
//
// The only persisted state is a small key/value table, client_state, holding
// the bearer token under [TokenKey]. Logout and authentication failures wipe
// the table wholesale through [StateRepository.Clear].
package repositories
