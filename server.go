package main

import (
	"bufio"
	"context"
	"net"
	"sync"

	"github.com/fansqz/template-debugger/protocol"
	"github.com/fansqz/template-debugger/utils"
	"github.com/fansqz/template-debugger/utils/gosync"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

// EventServer mirrors the interactive debug session to external clients.
// Every debugger event is converted to a DAP event and broadcast to all
// connected clients (editors, IDE plugins). The mirror is one-way: client
// input is read and discarded, the console shell stays in charge.
type EventServer struct {
	listener net.Listener

	mutex sync.Mutex
	conns map[string]net.Conn // session id -> connection
}

func NewEventServer() *EventServer {
	return &EventServer{
		conns: make(map[string]net.Conn),
	}
}

// Start listens on the given port and accepts mirror clients.
func (s *EventServer) Start(port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	s.listener = listener
	logrus.Infof("event mirror listening at %s", listener.Addr().String())

	gosync.Go(context.Background(), func(ctx context.Context) {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			s.addConn(conn)
		}
	})
	return nil
}

func (s *EventServer) addConn(conn net.Conn) {
	session := utils.GetUUID()

	s.mutex.Lock()
	s.conns[session] = conn
	s.mutex.Unlock()
	logrus.Infof("mirror client %s connected from %s", session, conn.RemoteAddr())

	// Drain and discard whatever the client sends.
	gosync.Go(context.Background(), func(ctx context.Context) {
		reader := bufio.NewReader(conn)
		for {
			if _, err := reader.ReadByte(); err != nil {
				s.removeConn(session)
				return
			}
		}
	})
}

func (s *EventServer) removeConn(session string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if conn, ok := s.conns[session]; ok {
		_ = conn.Close()
		delete(s.conns, session)
		logrus.Infof("mirror client %s disconnected", session)
	}
}

// Broadcast converts a debugger event to DAP and sends it to every client.
func (s *EventServer) Broadcast(event protocol.Event) {
	message := convertEvent(event)
	if message == nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for session, conn := range s.conns {
		if err := dap.WriteProtocolMessage(conn, message); err != nil {
			logrus.Warnf("mirror client %s write failed: %v", session, err)
			_ = conn.Close()
			delete(s.conns, session)
		}
	}
}

func (s *EventServer) Close() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = make(map[string]net.Conn)
}

// convertEvent maps debugger events onto the DAP event vocabulary.
func convertEvent(event protocol.Event) dap.EventMessage {
	switch e := event.(type) {
	case *protocol.StoppedEvent:
		return &dap.StoppedEvent{
			Event: *newEvent("stopped"),
			Body: dap.StoppedEventBody{
				Reason: string(e.Reason),
				Text:   e.File,
			},
		}

	case *protocol.ContinuedEvent:
		return &dap.ContinuedEvent{
			Event: *newEvent("continued"),
			Body:  dap.ContinuedEventBody{},
		}

	case *protocol.BreakpointEvent:
		return &dap.BreakpointEvent{
			Event: *newEvent("breakpoint"),
			Body: dap.BreakpointEventBody{
				Reason: string(e.Reason),
				Breakpoint: dap.Breakpoint{
					Id:       int(e.Num),
					Line:     e.Line,
					Source:   &dap.Source{Path: e.File},
					Verified: true,
				},
			},
		}

	case *protocol.ExitedEvent:
		return &dap.ExitedEvent{
			Event: *newEvent("exited"),
			Body:  dap.ExitedEventBody{ExitCode: e.ExitCode},
		}
	}

	logrus.Debugf("unmapped event %s", event.EventType())
	return nil
}

func newEvent(event string) *dap.Event {
	return &dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "event",
		},
		Event: event,
	}
}
