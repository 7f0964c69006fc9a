package socketio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Типы пакетов Engine.IO v4
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Типы пакетов Socket.IO v5
const (
	packetConnect      = '0'
	packetDisconnect   = '1'
	packetEvent        = '2'
	packetAck          = '3'
	packetConnectError = '4'
)

var errMalformedPacket = errors.New("malformed socket.io packet")

// Packet - пакет Socket.IO, передаваемый внутри сообщения Engine.IO
type Packet struct {
	Type      byte
	Namespace string
	AckID     *int
	Data      json.RawMessage
}

// openPayload - данные пакета открытия Engine.IO
type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
	MaxPayload   int    `json:"maxPayload"`
}

// encodePacket кодирует пакет в текстовое сообщение Engine.IO
func encodePacket(p Packet) string {
	var b strings.Builder
	b.WriteByte(engineMessage)
	b.WriteByte(p.Type)
	if p.Namespace != "" && p.Namespace != "/" {
		b.WriteString(p.Namespace)
		b.WriteByte(',')
	}
	if p.AckID != nil {
		b.WriteString(strconv.Itoa(*p.AckID))
	}
	if len(p.Data) > 0 {
		b.Write(p.Data)
	}
	return b.String()
}

// decodePacket разбирает сообщение Engine.IO типа "4" в пакет Socket.IO
func decodePacket(msg string) (Packet, error) {
	if len(msg) < 2 || msg[0] != engineMessage {
		return Packet{}, errMalformedPacket
	}

	p := Packet{Type: msg[1], Namespace: "/"}
	if p.Type < packetConnect || p.Type > '6' {
		return Packet{}, fmt.Errorf("%w: unknown type %q", errMalformedPacket, p.Type)
	}
	rest := msg[2:]

	if strings.HasPrefix(rest, "/") {
		if i := strings.IndexByte(rest, ','); i >= 0 {
			p.Namespace = rest[:i]
			rest = rest[i+1:]
		} else {
			p.Namespace = rest
			rest = ""
		}
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(rest[:digits])
		if err != nil {
			return Packet{}, fmt.Errorf("%w: ack id: %v", errMalformedPacket, err)
		}
		p.AckID = &id
		rest = rest[digits:]
	}

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return Packet{}, fmt.Errorf("%w: invalid payload", errMalformedPacket)
		}
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// eventPacket строит пакет события [name, args...]
func eventPacket(namespace, event string, args ...interface{}) (Packet, error) {
	payload := make([]interface{}, 0, len(args)+1)
	payload = append(payload, event)
	payload = append(payload, args...)

	data, err := json.Marshal(payload)
	if err != nil {
		return Packet{}, fmt.Errorf("ошибка при кодировании события %s: %w", event, err)
	}
	return Packet{Type: packetEvent, Namespace: namespace, Data: data}, nil
}

// parseEvent возвращает имя события и его аргументы
func parseEvent(data json.RawMessage) (string, []json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, fmt.Errorf("%w: event payload: %v", errMalformedPacket, err)
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("%w: empty event", errMalformedPacket)
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", errMalformedPacket, err)
	}
	return name, parts[1:], nil
}

// connectErrorMessage достает текст из пакета ошибки подключения
func connectErrorMessage(data json.RawMessage) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil && text != "" {
		return text
	}
	return "connect error"
}
