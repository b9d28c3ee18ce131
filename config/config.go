package config

import (
	"fmt"
	"os"
	"time"

	"github.com/calmh/airpi/bme688"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus         BusConfig         `yaml:"bus"`
	Sensor      SensorConfig      `yaml:"sensor"`
	Baseline    BaselineConfig    `yaml:"baseline"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Prometheus  PrometheusConfig  `yaml:"prometheus"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Log         LogConfig         `yaml:"log"`
}

// BusConfig selects the I2C backend. Driver is one of sysfs, periph or
// i2c-dev.
type BusConfig struct {
	Driver    string `yaml:"driver"`
	Device    string `yaml:"device"`     // sysfs and periph
	BusNumber int    `yaml:"bus_number"` // i2c-dev
	Address   int    `yaml:"address"`
}

type SensorConfig struct {
	IdentifyAttempts int           `yaml:"identify_attempts"`
	IdentifyDelay    time.Duration `yaml:"identify_delay"`
	ResetDelay       time.Duration `yaml:"reset_delay"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	PollTimeout      time.Duration `yaml:"poll_timeout"`

	// Oversampling factors: 1, 2, 4, 8 or 16.
	TemperatureOversampling int `yaml:"temperature_oversampling"`
	PressureOversampling    int `yaml:"pressure_oversampling"`
	HumidityOversampling    int `yaml:"humidity_oversampling"`
	// IIR filter coefficient: 0, 1, 3, 7, 15, 31, 63 or 127.
	Filter int `yaml:"filter"`

	HeaterTemperature int           `yaml:"heater_temperature"` // °C
	HeaterDuration    time.Duration `yaml:"heater_duration"`
}

type BaselineConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type MeasurementConfig struct {
	Interval time.Duration `yaml:"interval"`
	Decimals int           `yaml:"decimals"`
	JSON     bool          `yaml:"json"` // JSON lines on stdout
}

type PrometheusConfig struct {
	Listen string `yaml:"listen"` // empty disables the HTTP server
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"` // empty disables publishing
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration of a sensor on the first Raspberry Pi
// bus at its default address.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Driver:    "sysfs",
			Device:    "/dev/i2c-1",
			BusNumber: 1,
			Address:   bme688.DefaultAddress,
		},
		Sensor: SensorConfig{
			IdentifyAttempts:        5,
			IdentifyDelay:           100 * time.Millisecond,
			ResetDelay:              10 * time.Millisecond,
			PollInterval:            5 * time.Millisecond,
			PollTimeout:             time.Second,
			TemperatureOversampling: 2,
			PressureOversampling:    16,
			HumidityOversampling:    2,
			Filter:                  3,
			HeaterTemperature:       300,
			HeaterDuration:          180 * time.Millisecond,
		},
		Baseline: BaselineConfig{
			Enabled:  true,
			Interval: bme688.DefaultBaselineInterval,
		},
		Measurement: MeasurementConfig{
			Interval: 500 * time.Millisecond,
			Decimals: 2,
		},
		Prometheus: PrometheusConfig{
			Listen: ":9120",
		},
		MQTT: MQTTConfig{
			Topic:    "sensors/bme688",
			ClientID: "airpi",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; missing fields are filled in from them.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero fields that have no meaningful zero value.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Bus.Driver == "" {
		c.Bus.Driver = def.Bus.Driver
	}
	if c.Bus.Device == "" {
		c.Bus.Device = def.Bus.Device
	}
	if c.Bus.Address == 0 {
		c.Bus.Address = def.Bus.Address
	}

	if c.Sensor.IdentifyAttempts == 0 {
		c.Sensor.IdentifyAttempts = def.Sensor.IdentifyAttempts
	}
	if c.Sensor.PollInterval == 0 {
		c.Sensor.PollInterval = def.Sensor.PollInterval
	}
	if c.Sensor.PollTimeout == 0 {
		c.Sensor.PollTimeout = def.Sensor.PollTimeout
	}
	if c.Sensor.TemperatureOversampling == 0 {
		c.Sensor.TemperatureOversampling = def.Sensor.TemperatureOversampling
	}
	if c.Sensor.PressureOversampling == 0 {
		c.Sensor.PressureOversampling = def.Sensor.PressureOversampling
	}
	if c.Sensor.HumidityOversampling == 0 {
		c.Sensor.HumidityOversampling = def.Sensor.HumidityOversampling
	}
	if c.Sensor.HeaterTemperature == 0 {
		c.Sensor.HeaterTemperature = def.Sensor.HeaterTemperature
	}
	if c.Sensor.HeaterDuration == 0 {
		c.Sensor.HeaterDuration = def.Sensor.HeaterDuration
	}

	if c.Baseline.Interval == 0 {
		c.Baseline.Interval = def.Baseline.Interval
	}

	if c.Measurement.Interval == 0 {
		c.Measurement.Interval = def.Measurement.Interval
	}

	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Options converts the sensor section into driver options.
func (c *Config) Options() (*bme688.Options, error) {
	s := c.Sensor
	o := &bme688.Options{
		Address:           c.Bus.Address,
		IdentifyAttempts:  s.IdentifyAttempts,
		IdentifyDelay:     s.IdentifyDelay,
		ResetDelay:        s.ResetDelay,
		PollInterval:      s.PollInterval,
		PollTimeout:       s.PollTimeout,
		HeaterTemperature: s.HeaterTemperature,
		HeaterDuration:    s.HeaterDuration,
	}

	var err error
	if o.TemperatureOversampling, err = oversampling(s.TemperatureOversampling); err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}
	if o.PressureOversampling, err = oversampling(s.PressureOversampling); err != nil {
		return nil, fmt.Errorf("pressure: %w", err)
	}
	if o.HumidityOversampling, err = oversampling(s.HumidityOversampling); err != nil {
		return nil, fmt.Errorf("humidity: %w", err)
	}
	if o.Filter, err = filter(s.Filter); err != nil {
		return nil, err
	}
	return o, nil
}

func oversampling(factor int) (bme688.Oversampling, error) {
	switch factor {
	case 1:
		return bme688.Oversampling1x, nil
	case 2:
		return bme688.Oversampling2x, nil
	case 4:
		return bme688.Oversampling4x, nil
	case 8:
		return bme688.Oversampling8x, nil
	case 16:
		return bme688.Oversampling16x, nil
	default:
		return 0, fmt.Errorf("unsupported oversampling factor %d", factor)
	}
}

func filter(coeff int) (bme688.Filter, error) {
	switch coeff {
	case 0:
		return bme688.FilterOff, nil
	case 1:
		return bme688.Filter1, nil
	case 3:
		return bme688.Filter3, nil
	case 7:
		return bme688.Filter7, nil
	case 15:
		return bme688.Filter15, nil
	case 31:
		return bme688.Filter31, nil
	case 63:
		return bme688.Filter63, nil
	case 127:
		return bme688.Filter127, nil
	default:
		return 0, fmt.Errorf("unsupported IIR filter coefficient %d", coeff)
	}
}
