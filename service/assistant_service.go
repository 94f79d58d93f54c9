package service

import (
	"context"
	"log"

	"github.com/songwish/assistant-be/types"
)

// FallbackResponse is returned when neither passages nor account data ground
// the query.
const FallbackResponse = "I don't have information about that. Let me check with my team."

// QueryLogger records answered queries for support review. Implementations
// must never fail the request path.
type QueryLogger interface {
	LogQuery(ctx context.Context, email, query, response string, sources []string)
}

// AssistantService runs the full grounded-answer pipeline: retrieval,
// account aggregation, prompt composition, completion and citation mapping.
type AssistantService struct {
	index      *IndexService
	fastspring *FastSpringService
	ai         AIService
	queryLog   QueryLogger
}

func NewAssistantService(index *IndexService, fastspring *FastSpringService, ai AIService, queryLog QueryLogger) *AssistantService {
	return &AssistantService{
		index:      index,
		fastspring: fastspring,
		ai:         ai,
		queryLog:   queryLog,
	}
}

// Answer grounds and answers one customer query. email is empty for
// anonymous callers; account grounding failures degrade to an anonymous
// answer rather than failing the query.
func (s *AssistantService) Answer(ctx context.Context, req types.QueryRequest, email string) (*types.QueryResponse, error) {
	accountData := ""
	var customerInfo *types.CustomerInfo
	if email != "" {
		record, err := s.fastspring.ExtractAccountProducts(ctx, email)
		if err != nil {
			log.Printf("Account grounding unavailable for query: %v", err)
		} else {
			accountData = record.AccountSummary
			customerInfo = &record.CustomerInfo
		}
	}

	var availableProducts []types.CatalogProduct
	if req.IncludeProducts {
		products, err := s.fastspring.GetAllAvailableProducts(ctx)
		if err != nil {
			log.Printf("Catalog unavailable for query: %v", err)
		} else {
			availableProducts = products
		}
	}

	passages, err := s.index.Retrieve(ctx, req.Query, req.K)
	if err != nil {
		return nil, err
	}

	if len(passages) == 0 && accountData == "" {
		return &types.QueryResponse{
			Response:            FallbackResponse,
			Sources:             []string{},
			Query:               req.Query,
			CitationsEnabled:    req.Citations,
			RecommendedProducts: []types.CatalogProduct{},
		}, nil
	}

	groups := GroupBySource(passages)
	sourceNames := make([]string, len(groups))
	for i, g := range groups {
		sourceNames[i] = g.Source
	}

	prompt := BuildPersonalizedPrompt(BuildSourceContext(groups), req.Query, availableProducts, accountData, customerInfo)
	responseText, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cited := []string{}
	if req.Citations {
		cited = ExtractCitedSources(responseText, sourceNames)
	}

	if s.queryLog != nil {
		s.queryLog.LogQuery(ctx, email, req.Query, responseText, cited)
	}

	return &types.QueryResponse{
		Response:            responseText,
		Sources:             cited,
		Query:               req.Query,
		CitationsEnabled:    req.Citations,
		NavigationEnabled:   req.Citations,
		AccountDataUsed:     accountData != "",
		CustomerInfo:        customerInfo,
		RecommendedProducts: []types.CatalogProduct{},
	}, nil
}

// ComposePrompt exposes prompt assembly for the streaming chat path.
func (s *AssistantService) ComposePrompt(ctx context.Context, query string, k int) (prompt string, sourceNames []string, err error) {
	passages, err := s.index.Retrieve(ctx, query, k)
	if err != nil {
		return "", nil, err
	}
	groups := GroupBySource(passages)
	sourceNames = make([]string, len(groups))
	for i, g := range groups {
		sourceNames[i] = g.Source
	}
	prompt = BuildPersonalizedPrompt(BuildSourceContext(groups), query, nil, "", nil)
	return prompt, sourceNames, nil
}

// Stream answers a query over the streaming completion path, delivering
// deltas to handler and returning the cited sources at the end.
func (s *AssistantService) Stream(ctx context.Context, query string, k int, handler StreamHandler) ([]string, error) {
	prompt, sourceNames, err := s.ComposePrompt(ctx, query, k)
	if err != nil {
		return nil, err
	}
	var full string
	err = s.ai.CompleteStream(ctx, prompt, func(chunk string) {
		full += chunk
		handler(chunk)
	})
	if err != nil {
		return nil, err
	}
	return ExtractCitedSources(full, sourceNames), nil
}
