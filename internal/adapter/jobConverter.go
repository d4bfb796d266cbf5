package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/jobModel"
)

func ToInitJobResponse(job jobModel.Job) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StatusURL: fmt.Sprintf("status/%s", job.Id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
	}
	switch job.JobType {
	case jobModel.JobTypeIngest:
		result.IngestResponse = ToIngestResponse(job.JobPayload)
	default:
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question:        ragData.Question,
		Answer:          ragData.Answer,
		Sources:         ragData.Sources,
		SelectedIndices: ragData.SelectedIndices,
	}
}

func ToIngestResponse(payload jobModel.JobPayload) *api.IngestResponse {
	if payload.DocumentId == "" {
		return nil
	}
	return &api.IngestResponse{
		DocumentName: payload.IngestFileName,
		DocumentId:   payload.DocumentId,
		ChunkCount:   payload.ChunkCount,
	}
}

func ToAskDiagnostics(candidates commonModels.QueryResultSet, selected []int, relevantText string) api.AskDiagnostics {
	out := api.AskDiagnostics{
		Candidates:      make([]api.Candidate, 0, len(candidates)),
		SelectedIndices: selected,
		RelevantText:    relevantText,
	}
	if out.SelectedIndices == nil {
		out.SelectedIndices = []int{}
	}
	for _, c := range candidates {
		out.Candidates = append(out.Candidates, api.Candidate{
			Id:       c.Id,
			Document: c.Document,
			Metadata: c.Metadata,
			Distance: c.Distance,
		})
	}
	return out
}

func ToChatHistoryResponse(chatId string, history []jobModel.Exchange) api.ChatHistoryResponse {
	out := api.ChatHistoryResponse{ChatId: chatId, Exchanges: make([]api.ChatExchange, 0, len(history))}
	for _, ex := range history {
		out.Exchanges = append(out.Exchanges, api.ChatExchange{
			Question: ex.Question,
			Answer:   ex.Answer,
			Sources:  ex.Sources,
			AskedAt:  ex.AskedAt,
		})
	}
	return out
}

func ToCollectionResponse(info commonModels.CollectionInfo) api.CollectionResponse {
	return api.CollectionResponse{
		Name:           info.Name,
		Count:          info.Count,
		EmbeddingModel: info.EmbeddingModel,
		Dimension:      info.Dimension,
		Space:          info.Space,
	}
}

func ToExchange(job jobModel.Job) jobModel.Exchange {
	return jobModel.Exchange{
		Question: job.JobPayload.Question,
		Answer:   job.JobPayload.Answer,
		Sources:  job.JobPayload.Sources,
		AskedAt:  job.CreatedTime,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
