package keyguard

import (
	"context"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/rbaliyan/config/codec"
)

// obfuscatedName prefixes the inner codec name in the registry.
const obfuscatedName = "obfuscated"

// Obfuscator is a codec.Transformer that binds bytes to a device. Transform
// frames the data and XORs it with the device keystream; Reverse undoes that
// and rejects frames whose checksum does not match.
//
// It hides values from casual inspection of a config store. It is not
// encryption: anyone holding the device identifier can reverse it.
type Obfuscator struct {
	device DeviceContext
}

var _ codec.Transformer = (*Obfuscator)(nil)

// NewObfuscator returns an Obfuscator for device.
func NewObfuscator(device DeviceContext) (*Obfuscator, error) {
	if device == nil {
		return nil, fmt.Errorf("keyguard: NewObfuscator device is nil")
	}
	return &Obfuscator{device: device}, nil
}

// Name implements codec.Transformer.
func (o *Obfuscator) Name() string {
	return obfuscatedName
}

// Transform implements codec.Transformer.
func (o *Obfuscator) Transform(_ context.Context, data []byte) ([]byte, error) {
	id, err := deviceID(o.device)
	if err != nil {
		return nil, err
	}
	return obfuscate(data, id)
}

// Reverse implements codec.Transformer. A frame written for another device
// fails with ErrDeviceMismatch.
func (o *Obfuscator) Reverse(_ context.Context, data []byte) ([]byte, error) {
	id, err := deviceID(o.device)
	if err != nil {
		return nil, err
	}
	return deobfuscate(data, id)
}

// Codec serializes with an inner codec and runs the result through an
// Obfuscator. Unlike codec.NewChain(inner, obfuscator) it wipes the
// intermediate plaintext. The name is "obfuscated:<inner>".
type Codec struct {
	inner codec.Codec
	obf   *Obfuscator
	name  string
}

var _ codec.Codec = (*Codec)(nil)

// NewCodec returns a Codec over inner bound to device. Register it with
// codec.Register so config values tagged "obfuscated:<inner>" decode.
func NewCodec(inner codec.Codec, device DeviceContext) (*Codec, error) {
	if inner == nil {
		return nil, fmt.Errorf("keyguard: NewCodec inner codec is nil")
	}
	obf, err := NewObfuscator(device)
	if err != nil {
		return nil, err
	}
	return &Codec{
		inner: inner,
		obf:   obf,
		name:  obfuscatedName + ":" + inner.Name(),
	}, nil
}

func (c *Codec) Name() string {
	return c.name
}

func (c *Codec) Encode(ctx context.Context, v any) ([]byte, error) {
	plaintext, err := c.inner.Encode(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("keyguard: inner encode failed: %w", err)
	}
	defer memguard.WipeBytes(plaintext)
	return c.obf.Transform(ctx, plaintext)
}

func (c *Codec) Decode(ctx context.Context, data []byte, v any) error {
	plaintext, err := c.obf.Reverse(ctx, data)
	if err != nil {
		if IsEmptyDeviceID(err) {
			return err
		}
		return fmt.Errorf("keyguard: deobfuscate failed: %w", err)
	}
	defer memguard.WipeBytes(plaintext)

	if err := c.inner.Decode(ctx, plaintext, v); err != nil {
		return fmt.Errorf("keyguard: inner decode failed: %w", err)
	}
	return nil
}
