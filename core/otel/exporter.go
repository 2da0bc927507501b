package otel

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/wippyai/glide-bridge/errors"
)

// Protocol is the transport an exporter ships signals over.
type Protocol uint8

const (
	ProtocolGRPC Protocol = iota + 1
	ProtocolHTTP
	ProtocolFile
)

func (p Protocol) String() string {
	switch p {
	case ProtocolGRPC:
		return "grpc"
	case ProtocolHTTP:
		return "http"
	case ProtocolFile:
		return "file"
	default:
		return "unknown"
	}
}

// DefaultFileName is appended when a file endpoint names a directory.
const DefaultFileName = "signals.json"

// Exporter is a parsed signals endpoint.
type Exporter struct {
	// Endpoint is host:port for network protocols.
	Endpoint string
	// Path is the output file for ProtocolFile.
	Path     string
	Protocol Protocol
	Insecure bool
}

// ParseExporter parses grpc://host:port, http(s)://host:port or
// file:///absolute/path. A file path naming an existing directory gets
// DefaultFileName appended; otherwise its parent directory must exist.
func ParseExporter(endpoint string) (Exporter, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("Parse error. %s", endpoint), err)
	}

	switch u.Scheme {
	case "grpc":
		if u.Host == "" {
			return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("Missing host in endpoint %q", endpoint), nil)
		}
		return Exporter{Protocol: ProtocolGRPC, Endpoint: u.Host, Insecure: true}, nil

	case "http", "https":
		if u.Host == "" {
			return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("Missing host in endpoint %q", endpoint), nil)
		}
		return Exporter{Protocol: ProtocolHTTP, Endpoint: u.Host, Insecure: u.Scheme == "http"}, nil

	case "file":
		return parseFile(endpoint, u)

	default:
		return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("Unsupported protocol %q in endpoint %q", u.Scheme, endpoint), nil)
	}
}

func parseFile(endpoint string, u *url.URL) (Exporter, error) {
	path := u.Path
	if u.Host != "" || !filepath.IsAbs(path) {
		return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("File path must be absolute: %q", endpoint), nil)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Exporter{Protocol: ProtocolFile, Path: filepath.Join(path, DefaultFileName)}, nil
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Exporter{}, errors.TelemetryConfig(fmt.Sprintf("The directory does not exist or is not a directory: %s", dir), err)
	}
	return Exporter{Protocol: ProtocolFile, Path: path}, nil
}
