package xapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scorewatch/scorewatch/internal/usecase"
)

type userLookupEnvelope struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type timelineEnvelope struct {
	Data []struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		CreatedAt   string `json:"created_at"`
		Attachments struct {
			MediaKeys []string `json:"media_keys"`
		} `json:"attachments"`
	} `json:"data"`
	Includes struct {
		Media []struct {
			MediaKey string `json:"media_key"`
			Type     string `json:"type"`
			URL      string `json:"url"`
		} `json:"media"`
	} `json:"includes"`
}

// CollectPosts fetches one handle's timeline inside [windowStart, windowEnd).
func (c *Client) CollectPosts(ctx context.Context, handle string, windowStart, windowEnd time.Time) ([]usecase.CollectedPost, error) {
	username := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if username == "" {
		return nil, fmt.Errorf("%w: handle is required", usecase.ErrInvalidInput)
	}

	userID, err := c.resolveUserID(ctx, username)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("start_time", windowStart.UTC().Format(time.RFC3339))
	query.Set("end_time", windowEnd.UTC().Format(time.RFC3339))
	query.Set("max_results", "100")
	query.Set("tweet.fields", "created_at,attachments")
	query.Set("expansions", "attachments.media_keys")
	query.Set("media.fields", "url,type")

	var envelope timelineEnvelope
	if err := c.doJSON(ctx, "/users/"+userID+"/tweets", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch timeline for %s: %w", username, err)
	}

	mediaByKey := make(map[string]struct{ url, kind string }, len(envelope.Includes.Media))
	for _, media := range envelope.Includes.Media {
		mediaByKey[media.MediaKey] = struct{ url, kind string }{url: media.URL, kind: media.Type}
	}

	out := make([]usecase.CollectedPost, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		postedAt, parseErr := time.Parse(time.RFC3339, item.CreatedAt)
		if parseErr != nil {
			c.logger.WarnContext(ctx, "skip post with bad created_at",
				"external_id", item.ID,
				"value", item.CreatedAt,
			)
			continue
		}

		post := usecase.CollectedPost{
			ExternalID: item.ID,
			Text:       item.Text,
			PostedAt:   postedAt.UTC(),
		}
		for _, mediaKey := range item.Attachments.MediaKeys {
			media, ok := mediaByKey[mediaKey]
			if !ok {
				continue
			}
			post.MediaURL = media.url
			post.MediaType = media.kind
			if media.kind == "video" || media.kind == "animated_gif" {
				post.HasVideo = true
			}
			break
		}
		out = append(out, post)
	}

	return out, nil
}

func (c *Client) resolveUserID(ctx context.Context, username string) (string, error) {
	c.userIDMu.Lock()
	cached, ok := c.userIDs[username]
	c.userIDMu.Unlock()
	if ok {
		return cached, nil
	}

	var envelope userLookupEnvelope
	if err := c.doJSON(ctx, "/users/by/username/"+url.PathEscape(username), nil, &envelope); err != nil {
		return "", fmt.Errorf("resolve user %s: %w", username, err)
	}
	if envelope.Data.ID == "" {
		return "", fmt.Errorf("%w: user %s", usecase.ErrNotFound, username)
	}

	c.userIDMu.Lock()
	c.userIDs[username] = envelope.Data.ID
	c.userIDMu.Unlock()

	return envelope.Data.ID, nil
}
