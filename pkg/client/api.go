package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func pathID(prefix, id, suffix string) string {
	return prefix + "/" + url.PathEscape(id) + suffix
}

// --- auth ---

// Bootstrap provisions the signed-in caller. created reports whether the account is new.
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/bootstrap", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/otp/send", nil, map[string]string{"email": email}, nil)
	return err
}

func (c *Client) RegisterWithOTP(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var out TokenResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/otp/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginWithOTP(ctx context.Context, email, otp string) (*TokenResponse, error) {
	var out TokenResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/otp/login", nil, map[string]string{"email": email, "otp": otp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	var out Profile
	if _, err := c.do(ctx, http.MethodPut, "/auth/me", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PublicProfile(ctx context.Context, uid string) (*PublicProfile, error) {
	var out PublicProfile
	if _, err := c.do(ctx, http.MethodGet, pathID("/users", uid, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- books ---

func (c *Client) SearchBooks(ctx context.Context, s BookSearch) ([]Book, *Pagination, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"subject": s.Subject, "class_level": s.ClassLevel, "board": s.Board,
		"condition": s.Condition, "city": s.City, "area": s.Area, "q": s.Q,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(s.PageSize))
	}
	var out []Book
	p, err := c.do(ctx, http.MethodGet, "/books/search", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, p, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	var out Book
	if _, err := c.do(ctx, http.MethodGet, pathID("/books", id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyBooks(ctx context.Context) ([]Book, error) {
	var out []Book
	if _, err := c.do(ctx, http.MethodGet, "/books/mine", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DonateBook uploads a listing with its images, in order.
func (c *Client) DonateBook(ctx context.Context, req DonateRequest, images []Upload) (*DonateResponse, error) {
	var out DonateResponse
	if err := c.doMultipart(ctx, "/books/donate", req, parts("images", images), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func parts(field string, uploads []Upload) []filePart {
	out := make([]filePart, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, filePart{field: field, filename: u.Filename, contentType: u.ContentType, content: u.Content})
	}
	return out
}

// --- requests ---

func (c *Client) ListRequests(ctx context.Context) ([]BookRequest, error) {
	var out []BookRequest
	if _, err := c.do(ctx, http.MethodGet, "/requests/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRequest(ctx context.Context, id string) (*BookRequest, error) {
	var out BookRequest
	if _, err := c.do(ctx, http.MethodGet, pathID("/requests", id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRequest(ctx context.Context, req CreateBookRequest) (*CreateBookRequestResponse, error) {
	var out CreateBookRequestResponse
	if _, err := c.do(ctx, http.MethodPost, "/requests/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveRequest(ctx context.Context, id string) (*Transition, error) {
	return c.transition(ctx, pathID("/requests", id, "/approve"))
}

func (c *Client) RejectRequest(ctx context.Context, id string) (*Transition, error) {
	return c.transition(ctx, pathID("/requests", id, "/reject"))
}

// CompleteRequest marks a request collected. The result carries the feedback path.
func (c *Client) CompleteRequest(ctx context.Context, id string) (*Transition, error) {
	return c.transition(ctx, pathID("/requests", id, "/complete"))
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id, status string) (*Transition, error) {
	var out Transition
	if _, err := c.do(ctx, http.MethodPatch, pathID("/requests", id, "/status"), nil, map[string]string{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) transition(ctx context.Context, path string) (*Transition, error) {
	var out Transition
	if _, err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- chats ---

func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var out Chat
	if _, err := c.do(ctx, http.MethodGet, pathID("/chats", id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatMessages(ctx context.Context, id string) ([]ChatMessage, error) {
	var out []ChatMessage
	if _, err := c.do(ctx, http.MethodGet, pathID("/chats", id, "/messages"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendChatMessage(ctx context.Context, id, message string) (*ChatMessage, error) {
	var out struct {
		Sent    bool        `json:"sent"`
		Message ChatMessage `json:"message"`
	}
	if _, err := c.do(ctx, http.MethodPost, pathID("/chats", id, "/message"), nil, map[string]string{"message": message}, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// --- notes ---

func (c *Client) ListNotes(ctx context.Context, subject, classLevel, board, q string) ([]Note, *Pagination, error) {
	query := url.Values{}
	for k, v := range map[string]string{"subject": subject, "class_level": classLevel, "board": board, "q": q} {
		if v != "" {
			query.Set(k, v)
		}
	}
	var out []Note
	p, err := c.do(ctx, http.MethodGet, "/notes/", query, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, p, nil
}

func (c *Client) MyNotes(ctx context.Context) ([]Note, error) {
	var out []Note
	if _, err := c.do(ctx, http.MethodGet, "/notes/mine", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadNote(ctx context.Context, req NoteUpload, file Upload) (*Note, error) {
	var out Note
	if err := c.doMultipart(ctx, "/notes/", req, parts("file", []Upload{file}), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterNoteDownload bumps the counter and returns the file URL.
func (c *Client) RegisterNoteDownload(ctx context.Context, id string) (string, int, error) {
	var out struct {
		FileURL   string `json:"file_url"`
		Downloads int    `json:"downloads"`
	}
	if _, err := c.do(ctx, http.MethodPost, pathID("/notes", id, "/download"), nil, nil, &out); err != nil {
		return "", 0, err
	}
	return out.FileURL, out.Downloads, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, pathID("/notes", id, ""), nil, nil, nil)
	return err
}

// --- ngo ---

func (c *Client) CreateBulkRequest(ctx context.Context, req CreateBulkRequest) (*BulkRequest, error) {
	var out BulkRequest
	if _, err := c.do(ctx, http.MethodPost, "/ngo/bulk-request", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyBulkRequests(ctx context.Context) ([]BulkRequest, error) {
	var out []BulkRequest
	if _, err := c.do(ctx, http.MethodGet, "/ngo/bulk-request", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OpenBulkRequests(ctx context.Context) ([]BulkRequest, error) {
	var out []BulkRequest
	if _, err := c.do(ctx, http.MethodGet, "/ngo/bulk-requests/open", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FulfillBulkRequest(ctx context.Context, id string, count int) (*BulkRequest, error) {
	var out BulkRequest
	if _, err := c.do(ctx, http.MethodPost, pathID("/ngo/bulk-request", id, "/fulfill"), nil, map[string]int{"count": count}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- feedback, impact, credits ---

func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResult, error) {
	var out FeedbackResult
	if _, err := c.do(ctx, http.MethodPost, "/feedback/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReceivedFeedback(ctx context.Context) ([]Feedback, error) {
	var out []Feedback
	if _, err := c.do(ctx, http.MethodGet, "/feedback/received", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Impact(ctx context.Context) (*Impact, error) {
	var out Impact
	if _, err := c.do(ctx, http.MethodGet, "/impact/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyCredits(ctx context.Context) (*CreditBalance, error) {
	var out CreditBalance
	if _, err := c.do(ctx, http.MethodGet, "/credits/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []LeaderboardEntry
	if _, err := c.do(ctx, http.MethodGet, "/credits/leaderboard", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- location ---

func (c *Client) PickupPoints(ctx context.Context, s PickupSearch) (*PickupResult, error) {
	q := url.Values{}
	if s.Lat != nil && s.Lon != nil {
		q.Set("lat", strconv.FormatFloat(*s.Lat, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(*s.Lon, 'f', -1, 64))
	} else {
		if s.City != "" {
			q.Set("city", s.City)
		}
		if s.Area != "" {
			q.Set("area", s.Area)
		}
	}
	if s.RadiusKm > 0 {
		q.Set("radius", strconv.FormatFloat(s.RadiusKm, 'f', -1, 64))
	}
	var out PickupResult
	if _, err := c.do(ctx, http.MethodGet, "/location/pickup-points", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- distribution ---

func (c *Client) DistributionFeed(ctx context.Context, limit int) ([]DistributionEvent, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []DistributionEvent
	if _, err := c.do(ctx, http.MethodGet, "/distribution/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PostDistribution(ctx context.Context, req DistributionPost, images []Upload) (*DistributionEvent, error) {
	var out DistributionEvent
	if err := c.doMultipart(ctx, "/distribution/", req, parts("images", images), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleLike(ctx context.Context, id string) (*LikeResult, error) {
	var out LikeResult
	if _, err := c.do(ctx, http.MethodPost, pathID("/distribution", id, "/like"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DistributionComments(ctx context.Context, id string) ([]DistributionComment, error) {
	var out []DistributionComment
	if _, err := c.do(ctx, http.MethodGet, pathID("/distribution", id, "/comments"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CommentOnDistribution(ctx context.Context, id, text string) (*DistributionComment, error) {
	var out DistributionComment
	if _, err := c.do(ctx, http.MethodPost, pathID("/distribution", id, "/comment"), nil, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDistribution(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, pathID("/distribution", id, ""), nil, nil, nil)
	return err
}

// --- notifications ---

func (c *Client) Notifications(ctx context.Context, page, pageSize int) ([]Notification, *Pagination, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var out []Notification
	p, err := c.do(ctx, http.MethodGet, "/notifications/", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, p, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, pathID("/notifications", id, "/mark-read"), nil, nil, nil)
	return err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/notifications/mark-all-read", nil, nil, nil)
	return err
}
