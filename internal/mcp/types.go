package mcp

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// MonitorInfo describes one connected monitor.
type MonitorInfo struct {
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// SelectMonitorsInput is the input for the select_monitors tool.
type SelectMonitorsInput struct {
	Affinities    []string `json:"affinities" jsonschema:"required,Ordered affinity criteria (e.g. largest, not-leftmost, primary). Each narrows the previous result."`
	AllowMultiple bool     `json:"allow_multiple,omitempty" jsonschema:"Return every matching monitor instead of only the alphabetically first one"`
}

// SelectMonitorsOutput is the output for the select_monitors tool.
type SelectMonitorsOutput struct {
	Monitors []string `json:"monitors"`
}

// PreviewDispatchInput is the input for the preview_dispatch tool.
type PreviewDispatchInput struct{}

// PreviewInvocation is one fully resolved command launch.
type PreviewInvocation struct {
	Monitor string            `json:"monitor"`
	Program string            `json:"program"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// PreviewCommand pairs a configured command with its resolved invocations.
type PreviewCommand struct {
	Command     string              `json:"command"`
	Invocations []PreviewInvocation `json:"invocations"`
}

// PreviewDispatchOutput is the output for the preview_dispatch tool.
type PreviewDispatchOutput struct {
	Commands []PreviewCommand `json:"commands"`
}
