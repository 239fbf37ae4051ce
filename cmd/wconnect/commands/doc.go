// Package commands defines the wconnect CLI and wires dependencies for subcommands.
//
// Commands
//
//   - config init   Write the effective configuration to <home>/config.toml
//   - config show   Print the effective configuration
//   - uri           Parse a wc: URI and print its parts
//   - session       Offer a session and wait for a wallet to approve it
//   - approve       Join a wc: URI as the wallet and approve it
//   - reject        Join a wc: URI as the wallet and reject it
//   - listen        Print requests and updates arriving on the stored session
//   - call          Send a JSON-RPC request to the peer and print the result
//   - kill          End the stored session and notify the peer
//   - status        Print the stored session
//   - forget        Drop the stored session without notifying the peer
//
// # Implementation
//
// The root command loads configuration through viper (defaults, then
// <home>/config.toml, then WCONNECT_* variables, then flags) and builds the
// app before any subcommand runs. Commands that talk to a peer open a
// client on the relay and close it before returning; the session itself
// lives in the session store between invocations.
package commands
