package config

import "time"

const (
	AppEnvBase = "ROVER_"

	// Rover radio identity. The service/characteristic pair is the fixed
	// GATT addressing the firmware advertises; the serial bridge ignores
	// them but keeps the same identity for discovery.
	DefaultDeviceName         = "ESP32-Rover"
	DefaultDevicePrefix       = "ESP32"
	DefaultServiceUUID        = "4fafc201-1fb5-459e-8fcc-c5c9c331914b"
	DefaultCharacteristicUUID = "beb5483e-36e1-4688-b7f5-ea07361b26a8"
	DefaultConnectTimeout     = 10 * time.Second

	DefaultTransport = "serial"

	// Default Throttle Options
	DefaultMinInterval = 100 * time.Millisecond

	// Default Input Options
	DefaultMaxRadius = 80.0
	DefaultGamepadID = 0
	DefaultAxisX     = 0
	DefaultAxisY     = 1
	DefaultSpeedStep = 10

	DefaultForwardButton   = 0
	DefaultBackwardButton  = 1
	DefaultLeftButton      = 2
	DefaultRightButton     = 3
	DefaultStopButton      = 4
	DefaultSpeedUpButton   = 5
	DefaultSpeedDownButton = 6

	// Default Serial Options
	DefaultSerialPort = ""
	DefaultBaud       = 115200

	// Default Hud Options
	DefaultHudEnabled = true
	DefaultNetDevice  = "wlan0"
)

type Config struct {
	Transport string

	LinkCfg     LinkConfig
	ThrottleCfg ThrottleConfig
	InputCfg    InputConfig
	SerialCfg   SerialConfig
	HudCfg      HudConfig
}

type LinkConfig struct {
	DeviceName         string
	DevicePrefix       string
	ServiceUUID        string
	CharacteristicUUID string
	ConnectTimeout     time.Duration
}

type ThrottleConfig struct {
	MinInterval time.Duration
}

type InputConfig struct {
	GamepadID int
	AxisX     int
	AxisY     int
	MaxRadius float64
	SpeedStep int

	ForwardButton   int
	BackwardButton  int
	LeftButton      int
	RightButton     int
	StopButton      int
	SpeedUpButton   int
	SpeedDownButton int
}

type SerialConfig struct {
	Port string
	Baud int
}

type HudConfig struct {
	Enabled   bool
	NetDevice string
}
