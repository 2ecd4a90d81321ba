// Package httpapi exposes the reflection engine over HTTP.
//
// Every endpoint responds with a uniform envelope: {"ok": true, "data":
// ...} on success, {"ok": false, "error": {...}} on failure, with domain
// error codes mapped onto HTTP status codes. The combined context-scan
// endpoint is the one exception to all-or-nothing: it returns 200 with
// per-branch errors inside the payload, because a partial result is
// still a result.
package httpapi
