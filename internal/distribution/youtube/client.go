package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"uptube/internal/distribution"
)

const (
	platform        = "youtube"
	defaultMimeType = "video/mp4"
	watchURLFormat  = "https://youtu.be/%s"
)

var uploadParts = []string{"snippet", "status"}

var _ distribution.Uploader = (*Client)(nil)

type Client struct {
	auth *Auth
	opts ClientOptions
}

type ClientOptions struct {
	MimeType   string
	CategoryID string
	// Tags apply when the request carries none of its own.
	Tags []string
	// Endpoint overrides the API base URL.
	Endpoint string
}

func NewClient(auth *Auth, opts ClientOptions) *Client {
	if opts.MimeType == "" {
		opts.MimeType = defaultMimeType
	}
	return &Client{auth: auth, opts: opts}
}

func (c *Client) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResponse, error) {
	httpClient, err := c.auth.Client(ctx)
	if err != nil {
		return nil, err
	}

	serviceOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.opts.Endpoint != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(c.opts.Endpoint))
	}

	service, err := ytapi.NewService(ctx, serviceOpts...)
	if err != nil {
		return nil, distribution.Errorf(distribution.KindRemote, "failed to create YouTube service: %w", err)
	}

	videoFile, err := os.Open(req.FilePath)
	if err != nil {
		return nil, distribution.NewError(distribution.KindIO, err)
	}
	defer func() { _ = videoFile.Close() }()

	info, err := videoFile.Stat()
	if err != nil {
		return nil, distribution.NewError(distribution.KindIO, err)
	}

	// Media sends anything under one chunk as a single multipart request.
	// ResumableMedia always opens an upload session.
	video, err := service.Videos.Insert(uploadParts, c.videoResource(req)).
		ResumableMedia(ctx, videoFile, info.Size(), c.opts.MimeType).
		Do()
	if err != nil {
		return nil, distribution.NewError(distribution.KindRemote, remoteError(err))
	}

	return &distribution.UploadResponse{
		ID:       video.Id,
		URL:      fmt.Sprintf(watchURLFormat, video.Id),
		Platform: platform,
	}, nil
}

func (c *Client) Platform() string {
	return platform
}

func (c *Client) Auth() *Auth {
	return c.auth
}

func (c *Client) videoResource(req distribution.UploadRequest) *ytapi.Video {
	tags := req.Tags
	if len(tags) == 0 {
		tags = c.opts.Tags
	}

	snippet := &ytapi.VideoSnippet{
		Title:       req.Title,
		Description: req.Description,
		Tags:        tags,
		CategoryId:  c.opts.CategoryID,
	}
	// An empty description is still part of the metadata.
	snippet.ForceSendFields = []string{"Description"}

	return &ytapi.Video{
		Snippet: snippet,
		Status: &ytapi.VideoStatus{
			PrivacyStatus: string(req.Privacy),
		},
	}
}

// apiError surfaces the platform's own message instead of the transport
// framing googleapi puts around it.
type apiError struct {
	err *googleapi.Error
}

func (e *apiError) Error() string {
	return e.err.Message
}

func (e *apiError) Unwrap() error {
	return e.err
}

func remoteError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return &apiError{err: gerr}
	}
	return err
}
