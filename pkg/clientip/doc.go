// Package clientip extracts the real client IP address from HTTP requests.
//
// Proxy headers are consulted in priority order before falling back to the
// connection address:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry, the original client)
//  4. X-Real-IP (nginx and friends)
//  5. RemoteAddr (direct connection)
//
// Every candidate is parsed and normalized through net.ParseIP; malformed
// values and unspecified addresses (0.0.0.0, ::) are skipped. When nothing
// valid is found the raw RemoteAddr is returned, so the result is always
// non-empty for a real connection.
//
// The session lifecycle records this address as audit metadata (created and
// last-seen IP) on every established session:
//
//	ip := clientip.GetIP(r)
package clientip
