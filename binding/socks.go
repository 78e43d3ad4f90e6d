package binding

import (
	"fmt"
	"net"

	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/value"
)

// socket is the Blob payload BIND installs: a bound UDP socket. SOCKS is
// specified in datagram terms (PUT/GET each name their own remote peer
// rather than operating over an established connection), so net.UDPConn is
// the natural fit.
type socket struct {
	conn *net.UDPConn
}

// peer is the Blob payload KONN installs: a resolved remote address, used
// as the destination/source argument to PUT/GET.
type peer struct {
	addr *net.UDPAddr
}

var socksRoutines = []routine{
	{"RESOLV", []string{"addr"}, socksResolv},
	{"BIND", []string{"addr", "port"}, socksBind},
	{"LISTN", []string{"local"}, socksListn},
	{"KONN", []string{"local", "addr", "port"}, socksKonn},
	{"CLOSE", []string{"local"}, socksClose},
	{"PUT", []string{"local", "remote", "data"}, socksPut},
	{"GET", []string{"local", "remote", "amount"}, socksGet},
}

func socksSocket(scope *value.Scope, name string) (*socket, error) {
	b, err := argBlob(scope, name)
	if err != nil || b == nil {
		return nil, err
	}
	s, _ := b.(*socket)
	return s, nil
}

func socksPeer(scope *value.Scope, name string) (*peer, error) {
	b, err := argBlob(scope, name)
	if err != nil || b == nil {
		return nil, err
	}
	p, _ := b.(*peer)
	return p, nil
}

// socksResolv implements RESOLV(addr)→String: hostname-to-IP resolution.
func socksResolv(scope *value.Scope) (eval.Signal, error) {
	addr, err := argString(scope, "addr")
	if err != nil {
		return eval.Signal{}, err
	}
	ip, err := net.ResolveIPAddr("ip", addr)
	if err != nil {
		return eval.ReturnSignal(value.Str("")), nil
	}
	return eval.ReturnSignal(value.Str(Sanitize(ip.String()))), nil
}

// socksBind implements BIND(addr, port)→Blob: opens a UDP socket bound to
// addr:port. A bind failure yields a null Blob.
func socksBind(scope *value.Scope) (eval.Signal, error) {
	addr, err := argString(scope, "addr")
	if err != nil {
		return eval.Signal{}, err
	}
	port, err := argInt(scope, "port")
	if err != nil {
		return eval.Signal{}, err
	}

	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}
	return eval.ReturnSignal(value.BlobVal(&socket{conn: conn})), nil
}

// socksListn implements LISTN(local)→Blob: UDP is connectionless, so
// listening is implicit in BIND; LISTN just hands the same socket back, so
// a program can call BIND then LISTN as it would with a stream-oriented
// transport.
func socksListn(scope *value.Scope) (eval.Signal, error) {
	s, err := socksSocket(scope, "local")
	if err != nil {
		return eval.Signal{}, err
	}
	if s == nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}
	return eval.ReturnSignal(value.BlobVal(s)), nil
}

// socksKonn implements KONN(local, addr, port)→Blob: resolves a remote
// peer address for use with PUT/GET. local is unused beyond validating a
// live socket exists, matching the routine's documented arity.
func socksKonn(scope *value.Scope) (eval.Signal, error) {
	s, err := socksSocket(scope, "local")
	if err != nil {
		return eval.Signal{}, err
	}
	addr, err := argString(scope, "addr")
	if err != nil {
		return eval.Signal{}, err
	}
	port, err := argInt(scope, "port")
	if err != nil {
		return eval.Signal{}, err
	}
	if s == nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}

	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return eval.ReturnSignal(value.BlobVal(nil)), nil
	}
	return eval.ReturnSignal(value.BlobVal(&peer{addr: udpAddr})), nil
}

// socksClose implements CLOSE(local).
func socksClose(scope *value.Scope) (eval.Signal, error) {
	s, err := socksSocket(scope, "local")
	if err != nil {
		return eval.Signal{}, err
	}
	if s == nil {
		return eval.DefaultSignal(), nil
	}
	return eval.DefaultSignal(), s.conn.Close()
}

// socksPut implements PUT(local, remote, data)→Integer: bytes written.
func socksPut(scope *value.Scope) (eval.Signal, error) {
	s, err := socksSocket(scope, "local")
	if err != nil {
		return eval.Signal{}, err
	}
	p, err := socksPeer(scope, "remote")
	if err != nil {
		return eval.Signal{}, err
	}
	data, err := argString(scope, "data")
	if err != nil {
		return eval.Signal{}, err
	}
	if s == nil || p == nil {
		return eval.ReturnSignal(value.Int(0)), nil
	}

	n, writeErr := s.conn.WriteToUDP([]byte(data), p.addr)
	if writeErr != nil {
		return eval.ReturnSignal(value.Int(0)), nil
	}
	return eval.ReturnSignal(value.Int(int64(n))), nil
}

// socksGet implements GET(local, remote, amount)→String (sanitized): reads
// up to amount bytes arriving on local, regardless of sender (remote is
// accepted for call-shape symmetry with PUT but not used to filter).
func socksGet(scope *value.Scope) (eval.Signal, error) {
	s, err := socksSocket(scope, "local")
	if err != nil {
		return eval.Signal{}, err
	}
	amount, err := argInt(scope, "amount")
	if err != nil {
		return eval.Signal{}, err
	}
	if s == nil || amount <= 0 {
		return eval.ReturnSignal(value.Str("")), nil
	}

	buf := make([]byte, amount)
	n, _, readErr := s.conn.ReadFromUDP(buf)
	if readErr != nil {
		return eval.ReturnSignal(value.Str("")), nil
	}
	return eval.ReturnSignal(value.Str(Sanitize(string(buf[:n])))), nil
}
