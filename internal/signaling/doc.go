// Package signaling implements the WebSocket rendezvous service that pairs
// two browser peers in a named room and relays their SDP and ICE messages
// verbatim. The server never inspects signaling payloads; media flows
// peer-to-peer once the exchange completes.
package signaling
