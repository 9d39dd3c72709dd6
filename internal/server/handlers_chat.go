package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pagespace/gateway/internal/attachment"
	"github.com/pagespace/gateway/internal/cache"
	"github.com/pagespace/gateway/internal/orchestrator"
	"github.com/pagespace/gateway/internal/promptbuilder"
	"github.com/pagespace/gateway/internal/provider"
	"github.com/pagespace/gateway/internal/scope"
	"github.com/pagespace/gateway/pkg/types"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

// chatRequest is the POST /api/ai/chat body.
type chatRequest struct {
	StreamID         string              `json:"streamId,omitempty"`
	DriveID          string              `json:"driveId,omitempty"`
	PageID           string              `json:"pageId,omitempty"`
	Text             string              `json:"text"`
	FileParts        []types.FilePart    `json:"fileParts,omitempty"`
	Mentions         []promptbuilder.Mention `json:"mentions,omitempty"`
	Provider         string              `json:"provider,omitempty"`
	Model            string              `json:"model,omitempty"`
	RequestKey       string              `json:"requestKey,omitempty"`
	ReadOnly         bool                `json:"readOnly,omitempty"`
	WebSearchEnabled bool                `json:"webSearchEnabled,omitempty"`
	MaxTokens        int                 `json:"maxTokens,omitempty"`
	Temperature      float64             `json:"temperature,omitempty"`
}

// handleChat serves POST /api/ai/chat (spec §4.9/§6.3): parses and
// persists the user turn, assembles the system prompt, resolves the
// provider and effective tool map, and streams the orchestrator's output
// back as ordered parts terminated by a finish marker.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	if req.PageID != "" {
		if err := scope.CheckPageScope(r.Context(), p, s.deps.Stores.Pages, req.PageID); err != nil {
			writeError(w, http.StatusForbidden, ErrCodeScopeDenied, err.Error())
			return
		}
	} else if req.DriveID != "" {
		if err := scope.CheckDriveScope(p, req.DriveID); err != nil {
			writeError(w, http.StatusForbidden, ErrCodeScopeDenied, err.Error())
			return
		}
	}

	parts := make([]attachment.Part, len(req.FileParts))
	for i, fp := range req.FileParts {
		parts[i] = attachment.Part{DataURL: fp.URL}
	}
	if res := attachment.Validate(parts); !res.Valid {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, res.Reason)
		return
	}

	user, err := s.deps.Stores.Users.Get(r.Context(), p.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to resolve caller")
		return
	}

	userMsg, err := buildUserMessage(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "failed to encode message")
		return
	}
	userMsg.PageID = req.PageID
	if err := s.deps.Stores.Messages.SaveMessage(r.Context(), userMsg); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to persist message")
		return
	}

	systemPrompt, err := s.buildSystemPrompt(r, req, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	providerID, modelID := provider.EffectiveSelection(req.Provider, req.Model, user)
	creds, err := provider.ResolveCredentials(r.Context(), s.deps.Config, s.deps.Stores.Keys, p.UserID, providerID, req.RequestKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeProviderError, err.Error())
		return
	}
	drv, err := s.deps.ProviderFactory.New(r.Context(), providerID, modelID, creds)
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeProviderError, err.Error())
		return
	}

	hasTools := s.deps.Capabilities.HasToolCapability(r.Context(), providerID, modelID)
	toolMap := s.deps.Catalog.Filter(req.ReadOnly, req.WebSearchEnabled)
	if !hasTools {
		toolMap = nil
	}

	history, err := s.deps.Stores.Messages.History(r.Context(), req.PageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to load history")
		return
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	cw := newChatWriter(w)
	_, err = s.deps.Orchestrator.Run(r.Context(), &orchestrator.Request{
		StreamID:     req.StreamID,
		UserID:       p.UserID,
		PageID:       req.PageID,
		Provider:     drv,
		Model:        modelID,
		SystemPrompt: systemPrompt,
		History:      history,
		UserMessage:  userMsg,
		Tools:        toolMap,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	}, cw.emit)
	if err != nil {
		log.Error().Err(err).Str("pageId", req.PageID).Msg("chat stream ended with error")
	}
}

// buildUserMessage folds the request's text and file parts into a
// structured Envelope, per spec §6's persisted-content shape.
func buildUserMessage(req chatRequest) (*types.ChatMessage, error) {
	env := types.Envelope{TextParts: []string{req.Text}, FileParts: req.FileParts}
	idx := 0
	if req.Text != "" {
		env.PartsOrder = append(env.PartsOrder, types.PartRef{Index: idx, Type: types.PartKindText})
		idx++
	}
	for range req.FileParts {
		env.PartsOrder = append(env.PartsOrder, types.PartRef{Index: idx, Type: types.PartKindFile})
		idx++
	}
	content, err := env.Encode()
	if err != nil {
		return nil, err
	}
	return &types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleUserMsg,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
		IsActive:  true,
	}, nil
}

// buildSystemPrompt assembles the prompt for req's context scope, pulling
// the page tree and agent-awareness caches (C13) when the request is
// drive- or page-scoped.
func (s *Server) buildSystemPrompt(r *http.Request, req chatRequest, user *types.User) (string, error) {
	pbReq := promptbuilder.Request{
		Timezone: user.Timezone,
		ReadOnly: req.ReadOnly,
		Mentions: req.Mentions,
	}

	if req.PageID != "" && req.DriveID == "" {
		if driveID, err := s.deps.Stores.Pages.DriveIDForPage(r.Context(), req.PageID); err == nil {
			req.DriveID = driveID
		}
	}

	switch {
	case req.PageID != "":
		pbReq.Scope = promptbuilder.ScopePage
		page, _, err := s.deps.Stores.Pages.FindPage(r.Context(), req.DriveID, req.PageID)
		if err == nil && page != nil {
			pbReq.Page = &promptbuilder.PageContext{Path: page.Title, Type: page.Type}
		}
		fallthrough
	case req.DriveID != "":
		pbReq.Scope = promptbuilder.ScopeDrive
		if req.PageID != "" {
			pbReq.Scope = promptbuilder.ScopePage
		}
		info, err := s.deps.Stores.Drives.Describe(r.Context(), req.DriveID)
		if err == nil {
			pbReq.Drive = &promptbuilder.DriveContext{ID: info.ID, Name: info.Name, Slug: info.Slug}
		}
		if flat, err := s.deps.PageTree.Get(req.DriveID); err == nil {
			roots := cache.BuildTree(flat)
			subtreeRoot := ""
			if req.PageID != "" {
				subtreeRoot = req.PageID
				pbReq.PageTreeScope = "subtree"
			}
			pbReq.PageTree = promptbuilder.RenderTree(roots, subtreeRoot)
		}
		if agents, err := s.deps.AgentAwareness.Get(req.DriveID); err == nil {
			for _, a := range agents {
				pbReq.Agents = append(pbReq.Agents, promptbuilder.Agent{ID: a.ID, Title: a.Title, Definition: a.Definition})
			}
		}
	default:
		pbReq.Scope = promptbuilder.ScopeDashboard
		pbReq.Dashboard = &promptbuilder.DashboardContext{}
	}

	prompt, _ := s.deps.PromptAssembler.Build(pbReq)
	return prompt, nil
}
