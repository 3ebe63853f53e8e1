package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-lens/internal/logger"
)

type analyzeFoodParams struct {
	FoodDescription string `json:"foodDescription" description:"Free-text description of the food eaten"`
}

type recentAnalysesParams struct {
	Limit int `json:"limit,omitempty" description:"Maximum number of history entries to return"`
}

// toolSpec declares one tool's contract to a chat host. The analyze_food
// output shape matches the AnalysisResult contract exactly, so a host that
// runs its own model against the declared schema can still feed the widget.
type toolSpec struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

var nutrientSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"energy":       map[string]any{"type": "number"},
		"protein":      map[string]any{"type": "number"},
		"carbohydrate": map[string]any{"type": "number"},
		"fat":          map[string]any{"type": "number"},
	},
}

var toolSpecs = []toolSpec{
	{
		Name:        "analyze_food",
		Description: "Estimate the nutritional content of a free-text food description, broken into meals and ingredients.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"foodDescription": map[string]any{
					"type":        "string",
					"description": "Free-text description of the food eaten",
				},
			},
			"required": []string{"foodDescription"},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dailyTotals": nutrientSchema,
				"loggedMeals": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":        map[string]any{"type": "string"},
							"size":        map[string]any{"type": "string"},
							"total":       nutrientSchema,
							"ingredients": map[string]any{"type": "array"},
						},
					},
				},
			},
		},
	},
	{
		Name:        "get_recent_analyses",
		Description: "Return the most recent food analyses from the history log.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer"},
			},
		},
	},
}

// badRequestError marks a caller mistake on the tool surface; its message
// is surfaced as-is with a 400.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

// extractParams decodes the request arguments into target via JSON.
func extractParams(req *protocol.CallToolRequest, target any) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	return nil
}

func (s *Server) handleMCPTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": toolSpecs})
}

func (s *Server) handleMCP(c *gin.Context) {
	var request protocol.CallToolRequest
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "analyze_food":
		result, err = s.handleAnalyzeFoodTool(c, &request)
	case "get_recent_analyses":
		result, err = s.handleRecentAnalysesTool(&request)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown tool: %s", request.Name)})
		return
	}

	if err != nil {
		var badReq *badRequestError
		if errors.As(err, &badReq) {
			c.JSON(http.StatusBadRequest, gin.H{"error": badReq.msg})
			return
		}
		logger.Error("tool call failed", zap.String("tool", request.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeFoodTool(c *gin.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params analyzeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, &badRequestError{msg: "invalid parameters"}
	}
	if params.FoodDescription == "" {
		return nil, &badRequestError{msg: msgMissingInput}
	}

	result, err := s.analyze(c.Request.Context(), params.FoodDescription)
	if err != nil {
		return nil, err
	}

	return createJSONResponse(map[string]any{
		"dailyTotals": result.DailyTotals,
		"loggedMeals": result.LoggedMeals,
	})
}

func (s *Server) handleRecentAnalysesTool(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params recentAnalysesParams
	if err := extractParams(req, &params); err != nil {
		return nil, &badRequestError{msg: "invalid parameters"}
	}

	if s.storage == nil {
		return createJSONResponse([]any{})
	}

	records, err := s.storage.RecentAnalyses(params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve analyses: %w", err)
	}

	return createJSONResponse(records)
}

func createJSONResponse(data any) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
