package panel

import "errors"

// Sentinel errors returned by Controller operations.
var (
	// ErrRequestFailed is the single failure kind of the article service client.
	// It covers transport errors, non-2xx responses and undecodable bodies alike.
	ErrRequestFailed = errors.New("article service request failed")

	// ErrEmptyURL is returned by SubmitURL when no URL was entered.
	// No request is sent in that case.
	ErrEmptyURL = errors.New("url is required")

	// ErrSuperseded is returned by SearchArticles when a newer search or a clear
	// happened while the request was in flight. The response is discarded.
	ErrSuperseded = errors.New("search superseded by a newer request")
)

// User-facing alert messages.
const (
	MsgURLProcessed = "Article URL processed!"
	MsgSubmitFailed = "Something went wrong!"
	MsgSearchFailed = "Failed to search articles"
)
