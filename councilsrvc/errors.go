package councilsrvc

import (
	"net/http"

	"github.com/veriwork/backend/srvcerror"
)

const ErrCodeSubmissionRejected = "submission_rejected"

func ErrSubmissionRejected() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionRejected,
		"Submission rejected by security screening",
	).SetHttpStatusCode(http.StatusUnprocessableEntity)
}

const ErrCodeInvalidRequest = "invalid_evaluation_request"

func ErrInvalidRequest() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidRequest,
		"Project id and submission URL are required",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeNoJudgesAvailable = "no_judges_available"

func ErrNoJudgesAvailable() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNoJudgesAvailable,
		"No council judges are available",
	).SetHttpStatusCode(http.StatusServiceUnavailable)
}

const ErrCodeConsensusNotFound = "consensus_not_found"

func ErrConsensusNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeConsensusNotFound,
		"No evaluation found for project",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeQueueNotConfigured = "queue_not_configured"

func ErrQueueNotConfigured() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeQueueNotConfigured,
		"Evaluation queue is not configured",
	).SetHttpStatusCode(http.StatusServiceUnavailable)
}
