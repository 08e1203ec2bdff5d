// services/panel/replies.go
package panel

import (
	"capbutton-go/bus"
	"capbutton-go/errcode"
	"capbutton-go/types"
)

func (s *Service) replyOK(m *bus.Message) {
	if m.CanReply() {
		s.conn.Reply(m, types.OKReply{OK: true}, false)
	}
}

func (s *Service) replyErr(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	if code == "" {
		code = errcode.Error
	}
	s.conn.Reply(m, types.ErrorReply{OK: false, Error: string(code)}, false)
}
