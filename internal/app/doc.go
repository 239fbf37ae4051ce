// Package app wires application dependencies for the CLI.
//
// It loads Config through viper, builds the session and deep-link stores,
// the push client and the relay socket, and hands commands a Client: a
// connector whose socket is nudged by a network monitor when the bridge
// becomes reachable again.
package app
