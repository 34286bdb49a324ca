// Package domain defines the core business entities of the classifieds
// board: users and the advertisement listings they own. Entities carry
// their own invariant checks; persistence and transport concerns live
// elsewhere.
package domain
