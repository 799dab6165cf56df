// Package services implements the transport to the music catalog REST service.
//
// # Client
//
// [Client] issues one JSON request per call against a configured base URL
// (default http://localhost:5000/api). When the state store holds a bearer
// token it is attached with [oauth2.Token.SetAuthHeader]; otherwise the
// header is omitted.
//
// There are no retries, no backoff and no client-side timeout. A
// [rate.Limiter] can pace requests when api.requests_per_second is set.
//
// # Error Handling
//
// Failures map onto the shared sentinels:
//   - [shared.ErrNotAuthenticated] : 401 from an authenticated endpoint. Persisted state is wiped,
//     the unauthorized hook runs and the body is never decoded.
//   - [shared.ErrAPIRequest] : any other non-2xx, wrapped in [APIError] carrying the server message.
//   - [shared.ErrTransport] : network failure or an undecodable success body.
//
// Every failure except the 401 path is also pushed to the configured [Notifier].
//
// # Public Endpoints
//
// Sign-in and registration are public: a 401 there means bad credentials and
// is reported like any other server error, leaving stored state untouched.
package services
