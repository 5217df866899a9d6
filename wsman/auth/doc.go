// Package auth provides authentication handlers for WS-Man connections.
//
// # Supported Authentication Methods
//
//   - Basic: HTTP Basic authentication (use only over TLS)
//   - NTLM: NT LAN Manager authentication (via github.com/Azure/go-ntlmssp)
//
// Management controllers almost universally accept Basic over HTTPS,
// which is the default. NTLM is available for endpoints joined to a
// Windows domain.
//
// # Usage
//
//	a := auth.NewBasicAuth(auth.Credentials{
//	    Username: "root",
//	    Password: "calvin",
//	})
//	httpClient.Transport = a.Transport(httpClient.Transport)
package auth
