// Package storage declares persistence for dashboard client state.
//
// The only durable client state is the operator's access token. Dataset
// history always comes from the remote API and is never stored here.
package storage
