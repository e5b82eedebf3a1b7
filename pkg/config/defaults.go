package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultForceFile     = "../archive/ext_wrench_data.txt"
	DefaultForceOutput   = "../archive/ext_force_data.pdf"
	DefaultForceTitle    = "External Force-Torque: Expressed in Tool-Tip frame"
	DefaultJointsFile    = "../joint_torques.txt"
	DefaultJointsOutput  = "../joint_torques.pdf"
	DefaultMeasuredFile  = "measured_pose.txt"
	DefaultPredictedFile = "predicted_pose.txt"
	DefaultTwistFile     = "current_twist.txt"

	DefaultSeriesWidth  = 18.0 // inches
	DefaultSeriesHeight = 10.0
	DefaultPoseSize     = 10.0
	DefaultAxisLength   = 0.20
	DefaultElevation    = 25.0
	DefaultAzimuth      = 105.0
	DefaultSignalWidth  = 1.0

	DefaultDebounce       = 250 * time.Millisecond
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvForceFile  = "CTRLVIZ_FORCE_FILE"
	EnvJointsFile = "CTRLVIZ_JOINTS_FILE"
	EnvPoseDir    = "CTRLVIZ_POSE_DIR"
	EnvViewerAddr = "CTRLVIZ_VIEWER_ADDR"
)

// DefaultConfig returns the configuration matching the controller's
// stock file layout.
func DefaultConfig() *Config {
	return &Config{
		Force:  DefaultForce(),
		Joints: DefaultJoints(),
		Pose: PoseConfig{
			MeasuredFile:  DefaultMeasuredFile,
			PredictedFile: DefaultPredictedFile,
			TwistFile:     DefaultTwistFile,
			Size:          DefaultPoseSize,
			AxisLength:    DefaultAxisLength,
			Elevation:     DefaultElevation,
			Azimuth:       DefaultAzimuth,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Restart:  RestartReload,
		},
	}
}

// DefaultForce is the six-column external wrench log. The controller
// leaves three trailing lines that are not samples.
func DefaultForce() SeriesConfig {
	return SeriesConfig{
		File:   DefaultForceFile,
		Output: DefaultForceOutput,
		Title:  DefaultForceTitle,
		Width:  DefaultSeriesWidth,
		Height: DefaultSeriesHeight,
		Layout: Layout{
			Columns:     6,
			TrailerRows: 3,
			Signals: []SignalConfig{
				{Label: "x_force", Color: "red", Width: 2},
				{Label: "y_force", Color: "limegreen", Width: 2},
				{Label: "z_force", Color: "blue", Width: 2},
				{Label: "x_torque", Color: "red", Width: 2},
				{Label: "y_torque", Color: "limegreen", Width: 2},
				{Label: "z_torque", Color: "blue", Width: 2},
			},
		},
	}
}

// DefaultJoints is the seven-joint torque log. Row 0 carries the torque
// limits; the last two lines are not samples.
func DefaultJoints() SeriesConfig {
	return SeriesConfig{
		File:   DefaultJointsFile,
		Output: DefaultJointsOutput,
		Width:  DefaultSeriesWidth,
		Height: DefaultSeriesHeight,
		Layout: Layout{
			Columns:     7,
			HeaderRows:  1,
			TrailerRows: 2,
			Units:       "Nm",
			Signals: []SignalConfig{
				{Label: "joint_1_torque", Color: "green", Width: 0.5},
				{Label: "joint_2", Color: "green", Width: 0.5},
				{Label: "joint_3", Color: "green", Width: 0.5},
				{Label: "joint_4", Color: "green", Width: 0.5},
				{Label: "joint_5", Color: "green", Width: 0.5},
				{Label: "joint_6", Color: "green", Width: 0.5},
				{Label: "joint_7", Color: "green", Width: 0.5},
			},
		},
		Limits: &LimitConfig{
			MaxLabel: "max_torque_limit",
			MaxColor: "red",
			MinLabel: "min_torque_limit",
			MinColor: "blue",
			Width:    2.3,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if path := os.Getenv(EnvForceFile); path != "" {
		c.Force.File = path
	}
	if path := os.Getenv(EnvJointsFile); path != "" {
		c.Joints.File = path
	}
	if dir := os.Getenv(EnvPoseDir); dir != "" {
		c.Pose.MeasuredFile = joinDir(dir, c.Pose.MeasuredFile)
		c.Pose.PredictedFile = joinDir(dir, c.Pose.PredictedFile)
		c.Pose.TwistFile = joinDir(dir, c.Pose.TwistFile)
	}
	if addr := os.Getenv(EnvViewerAddr); addr != "" {
		c.Viewer.Addr = addr
	}
}
