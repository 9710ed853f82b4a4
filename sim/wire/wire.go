// Package wire sizes and encodes the VAST matcher packets that carry spatial
// publications.
//
// The packets are proto3 messages written directly with protowire:
//
//	Vec2d             { double x = 1; double y = 2; }
//	CircularRegion    { Vec2d center = 1; double radius = 2; }
//	PolygonRegion     { repeated Vec2d points = 1; }
//	PubSubMessage     { oneof aoi { CircularRegion circular = 1; PolygonRegion polygon = 2; }
//	                    string channel = 3; bytes payload = 4; }
//	VASTServerMessage { oneof message { PubSubMessage publication = 1; } }
//	VASTClientMessage { oneof message { PubSubMessage publish = 1; } }
//
// A publication travels sender to matcher as VASTServerMessage.publication
// carrying the AOI, channel and payload. Each delivery travels matcher to
// subscriber as VASTClientMessage.publish carrying only the payload.
package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vast-sim/sps-sim/sim"
)

// CoordinateOffset is added to both coordinates of a circle centre before
// encoding. Matchers keep all world coordinates positive.
const CoordinateOffset = 1e6

const (
	fieldVecX protowire.Number = 1
	fieldVecY protowire.Number = 2

	fieldCircleCenter protowire.Number = 1
	fieldCircleRadius protowire.Number = 2

	fieldPolygonPoints protowire.Number = 1

	fieldPubSubCircular protowire.Number = 1
	fieldPubSubPolygon  protowire.Number = 2
	fieldPubSubChannel  protowire.Number = 3
	fieldPubSubPayload  protowire.Number = 4

	fieldEnvelopeMessage protowire.Number = 1
)

// Oracle is the sim.WireSizeOracle for VAST packets. Sizes are computed
// arithmetically and always equal the length of the matching Encode output.
type Oracle struct{}

var _ sim.WireSizeOracle = Oracle{}

// OutboundSize implements sim.WireSizeOracle.
func (Oracle) OutboundSize(region sim.Region, channel string, payloadSize int) int {
	return messageSize(fieldEnvelopeMessage, pubSubSize(region, channel, max(payloadSize, 0)))
}

// InboundSize implements sim.WireSizeOracle.
func (Oracle) InboundSize(payloadSize int) int {
	return messageSize(fieldEnvelopeMessage, pubSubSize(nil, "", max(payloadSize, 0)))
}

// EncodePublication returns the sender to matcher packet.
func EncodePublication(region sim.Region, channel string, payload []byte) []byte {
	inner := pubSubSize(region, channel, len(payload))
	b := make([]byte, 0, messageSize(fieldEnvelopeMessage, inner))
	b = appendMessageHeader(b, fieldEnvelopeMessage, inner)
	return appendPubSub(b, region, channel, payload)
}

// EncodeDelivery returns the matcher to subscriber packet.
func EncodeDelivery(payload []byte) []byte {
	inner := pubSubSize(nil, "", len(payload))
	b := make([]byte, 0, messageSize(fieldEnvelopeMessage, inner))
	b = appendMessageHeader(b, fieldEnvelopeMessage, inner)
	return appendPubSub(b, nil, "", payload)
}

func offsetCenter(p sim.Point) sim.Point {
	return sim.Point{X: p.X + CoordinateOffset, Y: p.Y + CoordinateOffset}
}

// Sizes

func messageSize(num protowire.Number, n int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(n)
}

func doubleSize(num protowire.Number, v float64) int {
	if math.Float64bits(v) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeFixed64()
}

func vecSize(p sim.Point) int {
	return doubleSize(fieldVecX, p.X) + doubleSize(fieldVecY, p.Y)
}

func circleSize(c sim.Circle) int {
	return messageSize(fieldCircleCenter, vecSize(offsetCenter(c.Center))) +
		doubleSize(fieldCircleRadius, c.Radius)
}

func polygonSize(p sim.Polygon) int {
	n := 0
	for _, pt := range p.Points {
		n += messageSize(fieldPolygonPoints, vecSize(pt))
	}
	return n
}

func pubSubSize(region sim.Region, channel string, payloadSize int) int {
	n := 0
	switch r := region.(type) {
	case sim.Circle:
		n += messageSize(fieldPubSubCircular, circleSize(r))
	case sim.Polygon:
		n += messageSize(fieldPubSubPolygon, polygonSize(r))
	}
	if channel != "" {
		n += messageSize(fieldPubSubChannel, len(channel))
	}
	if payloadSize > 0 {
		n += messageSize(fieldPubSubPayload, payloadSize)
	}
	return n
}

// Encoders

func appendMessageHeader(b []byte, num protowire.Number, n int) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendVarint(b, uint64(n))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	bits := math.Float64bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, bits)
}

func appendVec(b []byte, num protowire.Number, p sim.Point) []byte {
	b = appendMessageHeader(b, num, vecSize(p))
	b = appendDouble(b, fieldVecX, p.X)
	return appendDouble(b, fieldVecY, p.Y)
}

func appendPubSub(b []byte, region sim.Region, channel string, payload []byte) []byte {
	switch r := region.(type) {
	case sim.Circle:
		b = appendMessageHeader(b, fieldPubSubCircular, circleSize(r))
		b = appendVec(b, fieldCircleCenter, offsetCenter(r.Center))
		b = appendDouble(b, fieldCircleRadius, r.Radius)
	case sim.Polygon:
		b = appendMessageHeader(b, fieldPubSubPolygon, polygonSize(r))
		for _, pt := range r.Points {
			b = appendVec(b, fieldPolygonPoints, pt)
		}
	}
	if channel != "" {
		b = protowire.AppendTag(b, fieldPubSubChannel, protowire.BytesType)
		b = protowire.AppendString(b, channel)
	}
	if len(payload) > 0 {
		b = protowire.AppendTag(b, fieldPubSubPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, payload)
	}
	return b
}
