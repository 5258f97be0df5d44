// Package garmin implements the remote activity source client.
// Token acquisition and refresh live outside stride; the client only reads
// a previously saved bearer token.
package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/config"
	"github.com/jtammen/stride/internal/errors"
)

const (
	searchPath      = "/activitylist-service/activities/search/activities"
	startTimeLayout = "2006-01-02 15:04:05"
)

// Client fetches activities from the Garmin Connect API.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	httpc    *http.Client
}

// NewClient builds a client from config, reading the bearer token from the
// configured token file.
func NewClient(cfg *config.Config) (*Client, error) {
	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("could not read token file %s: %v (authenticate first)", cfg.TokenFile, err))
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		token:    strings.TrimSpace(string(data)),
		pageSize: cfg.PageSize,
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// apiActivity mirrors the relevant slice of the Connect API response.
type apiActivity struct {
	ActivityID   json.Number `json:"activityId"`
	ActivityType struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
	StartTimeLocal string   `json:"startTimeLocal"`
	StartTimeGMT   string   `json:"startTimeGMT"`
	Duration       float64  `json:"duration"`
	Distance       float64  `json:"distance"`
	AverageSpeed   float64  `json:"averageSpeed"`
	MaxSpeed       float64  `json:"maxSpeed"`
	AverageHR      *float64 `json:"averageHR"`
	MaxHR          *float64 `json:"maxHR"`
	ElevationGain  *float64 `json:"elevationGain"`
	Calories       float64  `json:"calories"`

	SummarizedExerciseSets []apiExerciseSet `json:"summarizedExerciseSets"`

	Attempts *int   `json:"attempts"`
	Sends    *int   `json:"sends"`
	MaxGrade string `json:"maxGrade"`
}

type apiExerciseSet struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"subCategory"`
	Reps        int     `json:"reps"`
	VolumeG     float64 `json:"volume"`
}

// FetchActivities returns every activity with a start time on or after
// since, draining the paginated search endpoint eagerly. Any transport or
// decode fault is REMOTE_FETCH_FAILURE: without a complete fetch the run
// cannot trust its ordering.
func (c *Client) FetchActivities(ctx context.Context, since time.Time) ([]activity.Raw, error) {
	var result []activity.Raw
	start := 0

	for {
		batch, err := c.fetchPage(ctx, since, start)
		if err != nil {
			return nil, err
		}
		for _, a := range batch {
			result = append(result, toRaw(a))
		}
		if len(batch) < c.pageSize {
			break
		}
		start += c.pageSize
	}

	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, since time.Time, start int) ([]apiActivity, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("start", strconv.Itoa(start))
	params.Set("startDate", since.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.NewRemoteFetchFailure(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.NewRemoteFetchFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewRemoteFetchFailure(
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, searchPath))
	}

	var batch []apiActivity
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, errors.NewRemoteFetchFailure(fmt.Errorf("decode response: %w", err))
	}
	return batch, nil
}

// toRaw maps an API record to the domain shape. A start time that fails to
// parse is left zero; the driver reports it as malformed rather than the
// whole fetch failing.
func toRaw(a apiActivity) activity.Raw {
	raw := activity.Raw{
		RemoteID:       a.ActivityID.String(),
		TypeKey:        a.ActivityType.TypeKey,
		DurationSec:    a.Duration,
		DistanceM:      a.Distance,
		AvgSpeedMps:    a.AverageSpeed,
		MaxSpeedMps:    a.MaxSpeed,
		ElevationGainM: a.ElevationGain,
		Calories:       int(a.Calories),
		Attempts:       a.Attempts,
		Sends:          a.Sends,
		MaxGrade:       a.MaxGrade,
	}

	raw.StartedAt = parseStartTime(a.StartTimeLocal, a.StartTimeGMT)

	// A reported heart rate of 0 means "no strap", not a measurement;
	// treat it as absent so it never reaches a note header.
	if a.AverageHR != nil && *a.AverageHR > 0 {
		hr := int(*a.AverageHR)
		raw.AvgHR = &hr
	}
	if a.MaxHR != nil && *a.MaxHR > 0 {
		hr := int(*a.MaxHR)
		raw.MaxHR = &hr
	}

	for _, s := range a.SummarizedExerciseSets {
		label := s.SubCategory
		if label == "" {
			label = s.Category
		}
		set := activity.StrengthSet{Exercise: label, Reps: s.Reps}
		// The API reports volume (grams) per summarized set rather than a
		// working weight; back out the equivalent weight so that
		// weight x reps reproduces the source volume exactly.
		if s.Reps > 0 && s.VolumeG > 0 {
			set.WeightKg = s.VolumeG / 1000 / float64(s.Reps)
		}
		raw.Sets = append(raw.Sets, set)
	}

	return raw
}

func parseStartTime(local, gmt string) time.Time {
	for _, candidate := range []string{local, gmt} {
		if len(candidate) < len(startTimeLayout) {
			continue
		}
		if ts, err := time.Parse(startTimeLayout, candidate[:len(startTimeLayout)]); err == nil {
			return ts
		}
	}
	return time.Time{}
}
