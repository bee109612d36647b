package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tushare-mcp/internal/sector"
)

// ToolInfo describes one MCP tool
type ToolInfo struct {
	Name        string `json:"name"`
	Group       string `json:"group"`
	Description string `json:"description"`
}

// UniverseInfo contains universe details
type UniverseInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UniverseResponse represents available universes
type UniverseResponse struct {
	Universes []UniverseInfo `json:"universes"`
}

var universeNames = map[sector.Universe]string{
	sector.UniverseSWL1:  "Shenwan 2021 level-1 industries",
	sector.UniverseBroad: "Broad market indices",
}

// handleTools lists registered tools in registration order
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	var out []ToolInfo
	for _, info := range s.registry.AllInfo() {
		out = append(out, ToolInfo{Name: info.Name, Group: info.Group, Description: info.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUniverses returns the built-in index universes
func (s *Server) handleUniverses(w http.ResponseWriter, r *http.Request) {
	resp := UniverseResponse{}
	for _, u := range []sector.Universe{sector.UniverseSWL1, sector.UniverseBroad} {
		resp.Universes = append(resp.Universes, UniverseInfo{
			ID:    string(u),
			Name:  universeNames[u],
			Count: len(sector.GetUniverse(u)),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUniverse returns the members of one universe
func (s *Server) handleUniverse(w http.ResponseWriter, r *http.Request) {
	u := sector.Universe(chi.URLParam(r, "id"))
	if _, ok := universeNames[u]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown universe: " + string(u)})
		return
	}
	writeJSON(w, http.StatusOK, sector.GetUniverse(u))
}

// handleLimits reports per-interface quotas and current back-off
func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Limits())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
