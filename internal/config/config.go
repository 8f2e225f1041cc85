// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Roles.
const (
	RoleSource     = "source"
	RoleSink       = "sink"
	RoleStandalone = "standalone"
)

// Links.
const (
	LinkNone   = "none"
	LinkSerial = "serial"
	LinkMQTT   = "mqtt"
)

// Display drivers.
const (
	DisplayST7735S     = "st7735s"
	DisplayST7789      = "st7789"
	DisplaySSD1306     = "ssd1306"
	DisplayFramebuffer = "framebuffer"
	DisplayTrace       = "trace"
)

// Sensor drivers.
const (
	SensorMPU9250 = "mpu9250"
	SensorMock    = "mock"
)

// Sink views.
const (
	SinkViewSame       = "same"
	SinkViewComplement = "complement"
)

// Config holds all application configuration values.
type Config struct {
	Role string

	// Timing, milliseconds
	TickInterval int
	EstimatorDT  int // 0 means TickInterval

	// IMU
	SensorDriver string
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Button
	ButtonPin      string // empty disables the button
	ButtonDebounce int    // milliseconds

	// Display
	DisplayDriver    string
	DisplayWidth     int
	DisplayHeight    int
	DisplaySPIDevice string
	DisplaySPIHz     int
	DisplayDCPin     string
	DisplayResetPin  string
	DisplayColOffset int
	DisplayRowOffset int
	DisplayI2CBus    string

	// Telemetry link
	Link           string
	SerialPort     string
	SerialBaudRate int

	// MQTT
	MQTTBroker      string
	MQTTClientID    string
	TopicFrames     string
	TopicAttitude   string
	TopicNMEA       string
	PublishAttitude bool

	SinkView string

	// Web Server, 0 disables it
	WebServerPort int
}

// Keys lists every recognised configuration key. Environment variables
// with these names override file values.
var Keys = []string{
	"ROLE", "TICK_INTERVAL", "ESTIMATOR_DT",
	"SENSOR_DRIVER", "IMU_SPI_DEVICE", "IMU_CS_PIN", "IMU_ACCEL_RANGE", "IMU_GYRO_RANGE",
	"BUTTON_PIN", "BUTTON_DEBOUNCE",
	"DISPLAY_DRIVER", "DISPLAY_WIDTH", "DISPLAY_HEIGHT", "DISPLAY_SPI_DEVICE", "DISPLAY_SPI_HZ",
	"DISPLAY_DC_PIN", "DISPLAY_RESET_PIN", "DISPLAY_COL_OFFSET", "DISPLAY_ROW_OFFSET", "DISPLAY_I2C_BUS",
	"LINK", "SERIAL_PORT", "SERIAL_BAUD_RATE",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "TOPIC_FRAMES", "TOPIC_ATTITUDE", "TOPIC_NMEA", "PUBLISH_ATTITUDE",
	"SINK_VIEW", "WEB_SERVER_PORT",
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file sets a key.
func Default() *Config {
	return &Config{
		Role:             RoleStandalone,
		TickInterval:     30,
		SensorDriver:     SensorMPU9250,
		IMUSPIDevice:     "/dev/spidev0.0",
		IMUCSPin:         "8",
		ButtonDebounce:   30,
		DisplayDriver:    DisplayST7735S,
		DisplaySPIDevice: "/dev/spidev0.1",
		DisplaySPIHz:     8_000_000,
		DisplayDCPin:     "25",
		DisplayResetPin:  "24",
		Link:             LinkNone,
		SerialPort:       "/dev/serial0",
		SerialBaudRate:   115200,
		MQTTBroker:       "tcp://localhost:1883",
		TopicFrames:      "horizon/frames",
		TopicAttitude:    "horizon/attitude",
		TopicNMEA:        "horizon/nmea",
		SinkView:         SinkViewSame,
	}
}

// Load reads a KEY=VALUE file, or a YAML mapping when the name ends in
// .yaml/.yml, applies environment overrides and validates the result. An
// empty path loads defaults plus environment.
func Load(configPath string) (*Config, error) {
	values := map[string]string{}
	if configPath != "" {
		var err error
		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".yaml", ".yml":
			values, err = readYAML(configPath)
		default:
			values, err = godotenv.Read(configPath)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}
	for _, k := range Keys {
		if v, ok := os.LookupEnv(k); ok {
			values[k] = v
		}
	}

	cfg := Default()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.setValue(k, strings.TrimSpace(values[k])); err != nil {
			return nil, fmt.Errorf("config %s: %w", k, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		if v == nil {
			out[strings.ToUpper(k)] = ""
			continue
		}
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func parseInt(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func oneOf(key, value string, allowed ...string) (string, error) {
	v := strings.ToLower(value)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "ROLE":
		c.Role, err = oneOf(key, value, RoleSource, RoleSink, RoleStandalone)
	case "TICK_INTERVAL":
		c.TickInterval, err = parseInt(key, value, 1, 10_000)
	case "ESTIMATOR_DT":
		c.EstimatorDT, err = parseInt(key, value, 0, 10_000)

	// IMU
	case "SENSOR_DRIVER":
		c.SensorDriver, err = oneOf(key, value, SensorMPU9250, SensorMock)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		var v int
		v, err = parseInt(key, value, 0, 3)
		c.IMUAccelRange = byte(v)
	case "IMU_GYRO_RANGE":
		var v int
		v, err = parseInt(key, value, 0, 3)
		c.IMUGyroRange = byte(v)

	// Button
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "BUTTON_DEBOUNCE":
		c.ButtonDebounce, err = parseInt(key, value, 0, 1000)

	// Display
	case "DISPLAY_DRIVER":
		c.DisplayDriver, err = oneOf(key, value, DisplayST7735S, DisplayST7789, DisplaySSD1306, DisplayFramebuffer, DisplayTrace)
	case "DISPLAY_WIDTH":
		c.DisplayWidth, err = parseInt(key, value, 0, 4096)
	case "DISPLAY_HEIGHT":
		c.DisplayHeight, err = parseInt(key, value, 0, 4096)
	case "DISPLAY_SPI_DEVICE":
		c.DisplaySPIDevice = value
	case "DISPLAY_SPI_HZ":
		c.DisplaySPIHz, err = parseInt(key, value, 1, 100_000_000)
	case "DISPLAY_DC_PIN":
		c.DisplayDCPin = value
	case "DISPLAY_RESET_PIN":
		c.DisplayResetPin = value
	case "DISPLAY_COL_OFFSET":
		c.DisplayColOffset, err = parseInt(key, value, 0, 320)
	case "DISPLAY_ROW_OFFSET":
		c.DisplayRowOffset, err = parseInt(key, value, 0, 320)
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	// Link
	case "LINK":
		c.Link, err = oneOf(key, value, LinkNone, LinkSerial, LinkMQTT)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value, 300, 4_000_000)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_FRAMES":
		c.TopicFrames = value
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value
	case "TOPIC_NMEA":
		c.TopicNMEA = value
	case "PUBLISH_ATTITUDE":
		c.PublishAttitude, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("invalid PUBLISH_ATTITUDE %q: %w", value, err)
		}

	case "SINK_VIEW":
		c.SinkView, err = oneOf(key, value, SinkViewSame, SinkViewComplement)
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 0, 65535)

	default:
		// Unknown keys are ignored so one file can serve several tools.
	}
	return err
}

// defaultSizes are the panel sizes assumed when DISPLAY_WIDTH/HEIGHT are unset.
var defaultSizes = map[string][2]int{
	DisplayST7735S:     {160, 128},
	DisplayST7789:      {240, 240},
	DisplaySSD1306:     {128, 64},
	DisplayFramebuffer: {160, 128},
	DisplayTrace:       {160, 128},
}

func (c *Config) validate() error {
	if c.Role != RoleStandalone && c.Link == LinkNone {
		return fmt.Errorf("ROLE=%s needs LINK=serial or LINK=mqtt", c.Role)
	}
	if c.Link == LinkSerial && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required for LINK=serial")
	}
	if (c.Link == LinkMQTT || c.PublishAttitude) && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.Link == LinkMQTT && c.TopicFrames == "" {
		return fmt.Errorf("TOPIC_FRAMES is required for LINK=mqtt")
	}
	if c.Role != RoleSink && c.SensorDriver == SensorMPU9250 && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if (c.DisplayDriver == DisplayST7735S || c.DisplayDriver == DisplayST7789) && c.DisplayDCPin == "" {
		return fmt.Errorf("DISPLAY_DC_PIN is required for %s", c.DisplayDriver)
	}

	size := defaultSizes[c.DisplayDriver]
	if c.DisplayWidth == 0 {
		c.DisplayWidth = size[0]
	}
	if c.DisplayHeight == 0 {
		c.DisplayHeight = size[1]
	}
	if c.EstimatorDT == 0 {
		c.EstimatorDT = c.TickInterval
	}
	if c.MQTTClientID == "" {
		c.MQTTClientID = defaultClientID()
	}
	return nil
}

// defaultClientID derives a stable per-device MQTT client id.
func defaultClientID() string {
	id, err := machineid.ProtectedID("artificial_horizon")
	if err != nil {
		host, _ := os.Hostname()
		return "horizon-" + host
	}
	return "horizon-" + id[:12]
}

// Tick is the control loop period.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// Dt is the estimator time step in seconds.
func (c *Config) Dt() float64 {
	return float64(c.EstimatorDT) / 1000
}

// Debounce is the button confirmation delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.ButtonDebounce) * time.Millisecond
}

// InitGlobal loads the configuration once for the whole process.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the configuration loaded by InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
