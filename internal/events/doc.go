// Package events is the in-process event bus between the relay, the
// connector and the application.
//
// A message is dispatched under one key: its JSON-RPC method, "response:<id>"
// for responses, or its internal event name. Requests nobody listens for
// that are not reserved protocol events go to call_request subscribers.
package events
