package influxdb

import "errors"

// Errors returned by Connect and HealthCheck. Write failures are reported
// asynchronously through SetOnError.
var (
	ErrNotConnected     = errors.New("influxdb: not connected")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
)
