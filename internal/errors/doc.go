// Package errors provides structured, actionable error messages for the
// loopline CLI and its supporting packages.
//
// Every user-facing failure carries a stable code (e.g. "E101"), a category,
// a short message, and optionally a detail paragraph, a fix suggestion, and
// a documentation URL. Codes map to templates registered centrally in
// registry.go, so the same failure always surfaces the same way.
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: configuration file problems (missing, unparseable, bad values)
//   - storage: credential store backends (file permissions, sqlite)
//   - auth: login, registration, and session failures
//   - backend: transport and server-side failures
//   - cli: command usage errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail("No loopline.json found in " + dir).
//	    WithSuggestion("Run 'loopline init' to create one")
//
//	fmt.Println(err.Format())
//
// Errors support the standard errors.Is/As chain through Unwrap, so callers
// can still match wrapped sentinel errors from other packages.
package errors
