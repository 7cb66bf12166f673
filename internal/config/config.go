package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

func GetConfig() Config {
	cfg := Config{
		Transport:   GetStringEnv("TRANSPORT", DefaultTransport),
		LinkCfg:     GetLinkConfig(),
		ThrottleCfg: GetThrottleConfig(),
		InputCfg:    GetInputConfig(),
		SerialCfg:   GetSerialConfig(),
		HudCfg:      GetHudConfig(),
	}

	logrus.Infof("app config: \n%+v\n", cfg)
	return cfg
}

func GetLinkConfig() LinkConfig {
	return LinkConfig{
		DeviceName:         GetRawStringEnv("DEVICENAME", DefaultDeviceName),
		DevicePrefix:       GetRawStringEnv("DEVICEPREFIX", DefaultDevicePrefix),
		ServiceUUID:        GetStringEnv("SERVICEUUID", DefaultServiceUUID),
		CharacteristicUUID: GetStringEnv("CHARUUID", DefaultCharacteristicUUID),
		ConnectTimeout:     GetDurationEnv("CONNECTTIMEOUT", DefaultConnectTimeout),
	}
}

func GetThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MinInterval: GetDurationEnv("MININTERVAL", DefaultMinInterval),
	}
}

func GetInputConfig() InputConfig {
	envPrefix := "GAMEPAD_"
	return InputConfig{
		GamepadID: GetIntEnv(envPrefix+"ID", DefaultGamepadID),
		AxisX:     GetIntEnv(envPrefix+"AXISX", DefaultAxisX),
		AxisY:     GetIntEnv(envPrefix+"AXISY", DefaultAxisY),
		MaxRadius: GetFloatEnv(envPrefix+"MAXRADIUS", DefaultMaxRadius),
		SpeedStep: GetIntEnv(envPrefix+"SPEEDSTEP", DefaultSpeedStep),

		ForwardButton:   GetIntEnv(envPrefix+"FORWARD", DefaultForwardButton),
		BackwardButton:  GetIntEnv(envPrefix+"BACKWARD", DefaultBackwardButton),
		LeftButton:      GetIntEnv(envPrefix+"LEFT", DefaultLeftButton),
		RightButton:     GetIntEnv(envPrefix+"RIGHT", DefaultRightButton),
		StopButton:      GetIntEnv(envPrefix+"STOP", DefaultStopButton),
		SpeedUpButton:   GetIntEnv(envPrefix+"SPEEDUP", DefaultSpeedUpButton),
		SpeedDownButton: GetIntEnv(envPrefix+"SPEEDDOWN", DefaultSpeedDownButton),
	}
}

func GetSerialConfig() SerialConfig {
	return SerialConfig{
		Port: GetRawStringEnv("SERIALPORT", DefaultSerialPort),
		Baud: GetIntEnv("BAUD", DefaultBaud),
	}
}

func GetHudConfig() HudConfig {
	return HudConfig{
		Enabled:   GetBoolEnv("HUDENABLED", DefaultHudEnabled),
		NetDevice: GetRawStringEnv("NETDEVICE", DefaultNetDevice),
	}
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 10, 32)
	if err != nil {
		logrus.Warnf("%s not parsed - error: %s", env, err)
		return defaultValue
	}
	return int(value)
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
	if err != nil {
		logrus.Warnf("%s not parsed - error: %s", env, err)
		return defaultValue
	}
	return value
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.ToLower(strings.Trim(envValue, "\r"))
}

// GetRawStringEnv keeps the value's case, for device names and paths.
func GetRawStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.ParseFloat(envValue, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
	if err != nil {
		logrus.Warnf("%s not parsed - error: %s", env, err)
		return defaultValue
	}
	return value
}
