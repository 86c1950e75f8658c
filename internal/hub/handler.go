package hub

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lxzan/gws"

	"github.com/soar/joyinput/internal/joystick"
)

// Controller is the part of the joystick driver that clients can operate.
type Controller interface {
	SetAxisMapping(axis int, ch joystick.Channel) error
	SetAxisInversion(axis int, inverted bool) error
	SetAxisRangeLimit(axis int, limited bool) error
	SetActiveJoystick(id int) error
	StoreSettings() error
	BeginCalibration()
	EndCalibration() map[int]joystick.AxisCalibration
	Status() joystick.Status
}

// Handler is the gws event handler for client connections. New clients
// receive a full status message.
type Handler struct {
	gws.BuiltinEventHandler
	hub  *Hub
	ctrl Controller
}

func NewHandler(h *Hub, ctrl Controller) *Handler {
	return &Handler{hub: h, ctrl: ctrl}
}

func (h *Handler) OnOpen(socket *gws.Conn) {
	msg := newMessage(TypeStatus, h.hub.nextSeq())
	msg.Status = NewStatus(h.ctrl.Status())
	h.hub.Send(socket, msg)
	h.hub.register(socket)
}

func (h *Handler) OnClose(socket *gws.Conn, err error) {
	h.hub.unregister(socket)
}

func (h *Handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var cm ClientMessage
	if err := json.Unmarshal(message.Bytes(), &cm); err != nil {
		log.Printf("hub: error parsing client message: %v", err)
		h.reply(socket, "", err)
		return
	}

	ack := newMessage(TypeAck, 0)
	ack.Command = cm.Type

	var err error
	switch cm.Type {
	case "set_mapping":
		var ch joystick.Channel
		if ch, err = joystick.ParseChannel(cm.Channel); err == nil {
			err = h.ctrl.SetAxisMapping(cm.Axis, ch)
		}
	case "set_inversion":
		err = h.ctrl.SetAxisInversion(cm.Axis, cm.Value)
	case "set_range_limit":
		err = h.ctrl.SetAxisRangeLimit(cm.Axis, cm.Value)
	case "select_joystick":
		err = h.ctrl.SetActiveJoystick(cm.Joystick)
	case "store_settings":
		err = h.ctrl.StoreSettings()
	case "begin_calibration":
		h.ctrl.BeginCalibration()
	case "end_calibration":
		ack.Calibration = h.ctrl.EndCalibration()
	default:
		err = fmt.Errorf("unknown command %q", cm.Type)
	}
	if err != nil {
		log.Printf("hub: %s: %v", cm.Type, err)
		h.reply(socket, cm.Type, err)
		return
	}

	ack.Seq = h.hub.nextSeq()
	ack.Status = NewStatus(h.ctrl.Status())
	h.hub.Send(socket, ack)
}

func (h *Handler) reply(socket *gws.Conn, command string, err error) {
	msg := newMessage(TypeError, h.hub.nextSeq())
	msg.Command = command
	msg.Error = err.Error()
	h.hub.Send(socket, msg)
}
