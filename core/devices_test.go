package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func output(id uint8) *BooleanOutput {
	d := &BooleanOutput{}
	_ = d.bind(id)
	return d
}

func TestDeviceManagerInsert(t *testing.T) {
	m := NewDeviceManager()
	require.NoError(t, m.Insert(output(5)))
	require.NoError(t, m.Insert(output(2)))

	assert.ErrorIs(t, m.Insert(output(5)), ErrDuplicateID)
	assert.ErrorIs(t, m.Insert(&BooleanOutput{}), ErrAnonymousDevice)
	assert.Equal(t, 2, m.Len())

	dev, ok := m.Get(5)
	require.True(t, ok)
	assert.Equal(t, uint8(5), dev.ID())
	_, ok = m.Get(9)
	assert.False(t, ok)
}

func TestDeviceManagerOrder(t *testing.T) {
	m := NewDeviceManager()
	for _, id := range []uint8{200, 3, 77} {
		require.NoError(t, m.Insert(output(id)))
	}
	var ids []uint8
	m.Each(func(d Device) { ids = append(ids, d.ID()) })
	assert.Equal(t, []uint8{200, 3, 77}, ids)
}

func TestDeviceIDImmutable(t *testing.T) {
	d := &BooleanOutput{}
	require.NoError(t, d.bind(4))
	assert.NoError(t, d.bind(4))
	assert.ErrorIs(t, d.bind(5), ErrDeviceMismatch)
	assert.Equal(t, uint8(4), d.ID())
}
