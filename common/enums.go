// Package common holds enumerations shared by configuration, compiler and
// injection runtime, so neither has to import the other for them.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Specification of how compiled CSS reaches the document.
// ENUM(shared, development, batch)
type DeliveryMode int

const (
	// DeliveryModeShared appends rules to single shared constructed sheet.
	DeliveryModeShared DeliveryMode = iota
	// DeliveryModeDevelopment keeps one replaceable style element per unit.
	DeliveryModeDevelopment
	// DeliveryModeBatch defers insertion until batch is flushed.
	DeliveryModeBatch
)

// Specification of what identifies a compilation unit.
// ENUM(path, content)
type IdentityMode int

const (
	// IdentityModePath uses source path relative to project directory.
	IdentityModePath IdentityMode = iota
	// IdentityModeContent uses source text.
	IdentityModeContent
)

var ErrInvalidDeliveryMode = errors.New("not a valid DeliveryMode")

var _DeliveryModeMap = map[DeliveryMode]string{
	DeliveryModeShared:      "shared",
	DeliveryModeDevelopment: "development",
	DeliveryModeBatch:       "batch",
}

var _DeliveryModeValue = map[string]DeliveryMode{
	"shared":      DeliveryModeShared,
	"development": DeliveryModeDevelopment,
	"batch":       DeliveryModeBatch,
}

// DeliveryModeNames returns list of possible string values of DeliveryMode.
func DeliveryModeNames() []string {
	return []string{"shared", "development", "batch"}
}

func (x DeliveryMode) String() string {
	if str, ok := _DeliveryModeMap[x]; ok {
		return str
	}
	return fmt.Sprintf("DeliveryMode(%d)", x)
}

// IsValid provides a quick way to determine if the typed value is
// part of the allowed enumerated values.
func (x DeliveryMode) IsValid() bool {
	_, ok := _DeliveryModeMap[x]
	return ok
}

// ParseDeliveryMode attempts to convert a string to a DeliveryMode.
func ParseDeliveryMode(name string) (DeliveryMode, error) {
	if x, ok := _DeliveryModeValue[name]; ok {
		return x, nil
	}
	if x, ok := _DeliveryModeValue[strings.ToLower(name)]; ok {
		return x, nil
	}
	return DeliveryMode(0), fmt.Errorf("%s is %w", name, ErrInvalidDeliveryMode)
}

// MarshalText implements the text marshaller method.
func (x DeliveryMode) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (x *DeliveryMode) UnmarshalText(text []byte) error {
	tmp, err := ParseDeliveryMode(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}

var ErrInvalidIdentityMode = errors.New("not a valid IdentityMode")

var _IdentityModeMap = map[IdentityMode]string{
	IdentityModePath:    "path",
	IdentityModeContent: "content",
}

var _IdentityModeValue = map[string]IdentityMode{
	"path":    IdentityModePath,
	"content": IdentityModeContent,
}

// IdentityModeNames returns list of possible string values of IdentityMode.
func IdentityModeNames() []string {
	return []string{"path", "content"}
}

func (x IdentityMode) String() string {
	if str, ok := _IdentityModeMap[x]; ok {
		return str
	}
	return fmt.Sprintf("IdentityMode(%d)", x)
}

// IsValid provides a quick way to determine if the typed value is
// part of the allowed enumerated values.
func (x IdentityMode) IsValid() bool {
	_, ok := _IdentityModeMap[x]
	return ok
}

// ParseIdentityMode attempts to convert a string to an IdentityMode.
func ParseIdentityMode(name string) (IdentityMode, error) {
	if x, ok := _IdentityModeValue[name]; ok {
		return x, nil
	}
	if x, ok := _IdentityModeValue[strings.ToLower(name)]; ok {
		return x, nil
	}
	return IdentityMode(0), fmt.Errorf("%s is %w", name, ErrInvalidIdentityMode)
}

// MarshalText implements the text marshaller method.
func (x IdentityMode) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (x *IdentityMode) UnmarshalText(text []byte) error {
	tmp, err := ParseIdentityMode(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}
