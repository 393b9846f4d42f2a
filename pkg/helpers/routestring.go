package helpers

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Reserved keys of a route string.
const (
	RouteControllerKey = "c"
	RouteActionKey     = "a"
	RouteAreaKey       = "ar"
)

var (
	ErrMissingMachineKey  = errors.New("machine key is not configured")
	ErrInvalidRouteString = errors.New("invalid route string")
	ErrReservedRouteKey   = errors.New("route value key is reserved")
)

// RouteValues is the decoded form of a route string posted back by a form.
type RouteValues struct {
	Controller string            `json:"controller"`
	Action     string            `json:"action"`
	Area       string            `json:"area"`
	Values     map[string]string `json:"values,omitempty"`
}

// BuildRouteString renders c=..&a=..&ar=.. followed by the additional
// values sorted case-insensitively by key.
func BuildRouteString(controller, action, area string, values map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.EqualFold(k, RouteControllerKey) || strings.EqualFold(k, RouteActionKey) || strings.EqualFold(k, RouteAreaKey) {
			return "", fmt.Errorf("%w: %q", ErrReservedRouteKey, k)
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li != lj {
			return li < lj
		}
		return keys[i] < keys[j]
	})

	var b strings.Builder
	b.WriteString(RouteControllerKey + "=" + url.QueryEscape(controller))
	b.WriteString("&" + RouteActionKey + "=" + url.QueryEscape(action))
	b.WriteString("&" + RouteAreaKey + "=" + url.QueryEscape(area))
	for _, k := range keys {
		b.WriteString("&" + url.QueryEscape(k) + "=" + url.QueryEscape(fmt.Sprint(values[k])))
	}
	return b.String(), nil
}

// ParseRouteString is the inverse of BuildRouteString.
func ParseRouteString(s string) (RouteValues, error) {
	q, err := url.ParseQuery(s)
	if err != nil {
		return RouteValues{}, fmt.Errorf("%w: %v", ErrInvalidRouteString, err)
	}
	rv := RouteValues{
		Controller: q.Get(RouteControllerKey),
		Action:     q.Get(RouteActionKey),
		Area:       q.Get(RouteAreaKey),
	}
	if rv.Controller == "" || rv.Action == "" {
		return RouteValues{}, fmt.Errorf("%w: controller and action are required", ErrInvalidRouteString)
	}
	for k, v := range q {
		if k == RouteControllerKey || k == RouteActionKey || k == RouteAreaKey {
			continue
		}
		if rv.Values == nil {
			rv.Values = make(map[string]string)
		}
		rv.Values[k] = v[0]
	}
	return rv, nil
}

// CreateEncryptedRouteString builds a route string and encrypts it with the machine key.
func CreateEncryptedRouteString(machineKey []byte, controller, action, area string, values map[string]interface{}) (string, error) {
	plain, err := BuildRouteString(controller, action, area, values)
	if err != nil {
		return "", err
	}
	return EncryptWithMachineKey(machineKey, plain)
}

func DecryptRouteString(machineKey []byte, s string) (RouteValues, error) {
	plain, err := DecryptWithMachineKey(machineKey, s)
	if err != nil {
		return RouteValues{}, err
	}
	return ParseRouteString(plain)
}

func EncryptWithMachineKey(machineKey []byte, plain string) (string, error) {
	aead, err := newRouteCipher(machineKey)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return hex.EncodeToString(aead.Seal(nonce, nonce, []byte(plain), nil)), nil
}

func DecryptWithMachineKey(machineKey []byte, s string) (string, error) {
	aead, err := newRouteCipher(machineKey)
	if err != nil {
		return "", err
	}
	data, err := hex.DecodeString(s)
	if err != nil || len(data) < aead.NonceSize()+aead.Overhead() {
		return "", ErrInvalidRouteString
	}
	plain, err := aead.Open(nil, data[:aead.NonceSize()], data[aead.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRouteString, err)
	}
	return string(plain), nil
}

func newRouteCipher(machineKey []byte) (cipher.AEAD, error) {
	if len(machineKey) == 0 {
		return nil, ErrMissingMachineKey
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, machineKey, nil, []byte("route-string")), key); err != nil {
		return nil, fmt.Errorf("deriving route key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
