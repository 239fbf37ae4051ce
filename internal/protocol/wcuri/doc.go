// Package wcuri formats and parses connection URIs:
//
//	wc:<handshakeTopic>@<version>?bridge=<url-encoded relay>&key=<hex key>
//
// A URI is always derived from session state on demand and never stored.
package wcuri
