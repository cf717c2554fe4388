package listeners

import "net"

// TcpListener is the raw TCP accept surface; framed transports wrap it.
type TcpListener interface {
	Accept() (net.Conn, error)
	Close() error
}
