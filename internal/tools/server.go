// Package tools exposes the provider pass-through endpoints, the signal
// label sets and the sector analyses as MCP tools.
package tools

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tushare-mcp/internal/sector"
	"tushare-mcp/internal/signals"
	"tushare-mcp/internal/tushare"
)

// ServerName is advertised to MCP clients
const ServerName = "Tushare MCP Server"

// Deps are the services the tools call into
type Deps struct {
	Querier tushare.Querier
	Signals *signals.Service
	Sector  *sector.Analyzer
	// Now supplies the clock for default dates; nil means time.Now
	Now func() time.Time
}

// Build registers every tool whose dependency is present
func Build(d Deps) *Registry {
	r := NewRegistry(Instrument, Recover)

	now := d.Now
	if now == nil {
		now = time.Now
	}

	if d.Querier != nil {
		registerPassthrough(r, d.Querier)
	}
	if d.Signals != nil {
		registerLabels(r, d.Signals)
	}
	if d.Sector != nil {
		registerSector(r, d.Sector, now)
	}
	return r
}

// NewServer creates an MCP server carrying every tool in reg
func NewServer(version string, reg *Registry) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	reg.Attach(s)
	return s
}
