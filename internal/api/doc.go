// Package api provides the HTTP surface of the advertisement board: the
// request pipeline that scopes a persistence session to every request,
// resolves the caller identity from bearer tokens and translates failures
// to the wire contract, the handlers for authentication and listing CRUD,
// and the JSON/HTML renderer.
package api
