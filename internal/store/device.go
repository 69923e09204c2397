package store

import (
	"sync"

	"github.com/rmura/formsync/internal/logger"
	"github.com/rmura/formsync/internal/utils"
)

const deviceIDKey = "device_id"

// DeviceIdentity is the randomly generated, persisted-once token identifying
// the local installation. It is created lazily on first need and stays stable
// for the lifetime of the local storage. Used as write metadata only; it is
// not part of document identity.
type DeviceIdentity struct {
	kv  KV
	gen *utils.UUIDGenerator
	log *logger.Logger

	mu sync.Mutex
	id string
}

// NewDeviceIdentity builds a DeviceIdentity over kv.
func NewDeviceIdentity(kv KV, log *logger.Logger) *DeviceIdentity {
	return &DeviceIdentity{kv: kv, gen: utils.NewUUIDGenerator(), log: log}
}

// ID returns the device token, generating and persisting it on first call.
// When the KV is unavailable the token is still returned but will not survive
// a restart; identity metadata degrades, writes do not stop.
func (d *DeviceIdentity) ID() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.id != "" {
		return d.id
	}

	stored, ok, err := d.kv.Get(deviceIDKey)
	if err != nil {
		d.log.Warn().Err(err).Msg("read device id")
	}
	if ok && stored != "" {
		d.id = stored
		return d.id
	}

	d.id = d.gen.Generate()
	if err = d.kv.Set(deviceIDKey, d.id); err != nil {
		d.log.Warn().Err(err).Msg("persist device id")
	}

	return d.id
}
