package ar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/sensors"
)

type fakeHeading struct {
	h   model.Heading
	err error
}

func (f fakeHeading) Heading() (model.Heading, error) { return f.h, f.err }

type fakeStream struct{ closed int }

func (s *fakeStream) Close() error { s.closed++; return nil }

type fakeCamera struct {
	stream *fakeStream
	err    error
}

func (c *fakeCamera) Open(context.Context) (sensors.Stream, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.stream, nil
}

func TestViewLifecycle(t *testing.T) {
	cam := &fakeCamera{stream: &fakeStream{}}
	v := NewView(Projector{}, cam, fakeHeading{h: model.Heading{Alpha: 0, Calibrated: true}}, nil)
	require.NoError(t, v.Open(context.Background()))
	assert.True(t, v.Streaming())

	m, err := v.Markers(user, []model.Station{{ID: 1, Coords: northOf(user, 0.01)}})
	require.NoError(t, err)
	assert.Len(t, m, 1)

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
	assert.Equal(t, 1, cam.stream.closed)
	assert.False(t, v.Streaming())
}

func TestViewCameraDenied(t *testing.T) {
	v := NewView(Default(), &fakeCamera{err: errors.New("permission denied")}, fakeHeading{h: model.Heading{Calibrated: true}}, nil)
	err := v.Open(context.Background())
	assert.ErrorIs(t, err, model.ErrCameraUnavailable)

	// markers still work without the camera feed
	m, err := v.Markers(user, []model.Station{{ID: 1, Coords: northOf(user, 0.01)}})
	require.NoError(t, err)
	assert.Len(t, m, 1)
	assert.NoError(t, v.Close())

	assert.ErrorIs(t, NewView(Default(), nil, nil, nil).Open(context.Background()), model.ErrCameraUnavailable)
}

func TestViewHeadingErrors(t *testing.T) {
	v := NewView(Default(), nil, nil, nil)
	_, err := v.Markers(user, nil)
	assert.ErrorIs(t, err, model.ErrHeadingUnavailable)

	v = NewView(Default(), nil, fakeHeading{err: errors.New("sensor gone")}, nil)
	_, err = v.Markers(user, nil)
	assert.ErrorIs(t, err, model.ErrHeadingUnavailable)

	v = NewView(Default(), nil, fakeHeading{h: model.Heading{Alpha: 90}}, nil)
	_, err = v.Markers(user, nil)
	assert.ErrorIs(t, err, model.ErrHeadingUnavailable)
}
