package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// retrieveAPI is the subset of *bedrockagentruntime.Client used here.
type retrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// BedrockRetriever implements Service with a Bedrock knowledge base vector search.
type BedrockRetriever struct {
	client          retrieveAPI
	knowledgeBaseID string
}

// NewBedrockRetriever loads the default AWS configuration for region.
func NewBedrockRetriever(ctx context.Context, region, knowledgeBaseID string) (*BedrockRetriever, error) {
	if knowledgeBaseID == "" {
		return nil, errors.New("knowledge base id is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockRetriever{
		client:          bedrockagentruntime.NewFromConfig(cfg),
		knowledgeBaseID: knowledgeBaseID,
	}, nil
}

// Retrieve runs one vector search. Results without an S3 location are named
// "Document N".
func (b *BedrockRetriever) Retrieve(ctx context.Context, query string, filter *Filter, maxResults int) ([]domain.KnowledgeDocument, error) {
	vector := &types.KnowledgeBaseVectorSearchConfiguration{
		NumberOfResults: aws.Int32(int32(maxResults)),
	}
	if filter != nil {
		vector.Filter = toRetrievalFilter(*filter)
	}

	out, err := b.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: vector,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock retrieve: %w", err)
	}

	docs := make([]domain.KnowledgeDocument, 0, len(out.RetrievalResults))
	for i, r := range out.RetrievalResults {
		var content, source string
		if r.Content != nil {
			content = aws.ToString(r.Content.Text)
		}
		if r.Location != nil && r.Location.S3Location != nil {
			source = aws.ToString(r.Location.S3Location.Uri)
		}
		docs = append(docs, domain.NewKnowledgeDocument(content, source, aws.ToFloat64(r.Score), i))
	}
	return docs, nil
}

func toRetrievalFilter(f Filter) types.RetrievalFilter {
	switch f.Kind {
	case FilterAndAll:
		all := make([]types.RetrievalFilter, 0, len(f.All))
		for _, c := range f.All {
			all = append(all, toRetrievalFilter(c))
		}
		return &types.RetrievalFilterMemberAndAll{Value: all}
	default:
		return &types.RetrievalFilterMemberEquals{Value: types.FilterAttribute{
			Key:   aws.String(f.Key),
			Value: document.NewLazyDocument(f.Value),
		}}
	}
}
