package rtc

import "github.com/pion/webrtc/v4"

// dataChannel adapts *webrtc.DataChannel to the session's port.
type dataChannel struct {
	dc *webrtc.DataChannel
}

func (d *dataChannel) Label() string {
	return d.dc.Label()
}

func (d *dataChannel) Send(data []byte) error {
	return d.dc.Send(data)
}

func (d *dataChannel) Close() error {
	return d.dc.Close()
}

func (d *dataChannel) BufferedAmount() uint64 {
	return d.dc.BufferedAmount()
}

func (d *dataChannel) SetBufferedAmountLowThreshold(n uint64) {
	d.dc.SetBufferedAmountLowThreshold(n)
}

func (d *dataChannel) OnBufferedAmountLow(fn func()) {
	d.dc.OnBufferedAmountLow(fn)
}

func (d *dataChannel) OnOpen(fn func()) {
	d.dc.OnOpen(fn)
}

func (d *dataChannel) OnClose(fn func()) {
	d.dc.OnClose(fn)
}

func (d *dataChannel) OnMessage(fn func(data []byte)) {
	d.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		fn(msg.Data)
	})
}
