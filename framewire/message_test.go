package framewire

import "errors"

// textMessage is a minimal message type used across the package tests.
type textMessage struct {
	name string
	body string
}

func newTextMessage(body string) *textMessage {
	return &textMessage{name: "test.Text", body: body}
}

func (m *textMessage) TypeName() string { return m.name }

func (m *textMessage) MarshalBinary() ([]byte, error) {
	return []byte(m.body), nil
}

func (m *textMessage) UnmarshalBinary(data []byte) error {
	m.body = string(data)
	return nil
}

// brokenMessage fails to marshal, for error path tests.
type brokenMessage struct{}

func (m *brokenMessage) TypeName() string { return "test.Broken" }

func (m *brokenMessage) MarshalBinary() ([]byte, error) {
	return nil, errors.New("marshal always fails")
}

func (m *brokenMessage) UnmarshalBinary([]byte) error {
	return errors.New("unmarshal always fails")
}
