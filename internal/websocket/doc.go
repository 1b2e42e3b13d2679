// Package websocket pushes dashboard notifications to browsers.
//
// A Hub owns the set of connected clients and fans out messages built from
// the events contracts. Each Client runs a read pump, which only tracks
// liveness, and a write pump, which drains the client's send queue and
// pings the peer.
//
//	hub := websocket.NewHub(logger, metrics)
//	hub.Start()
//	defer hub.Stop()
//
//	hub.Broadcast(string(events.MessageTypeDatasetReloaded), payload)
package websocket
