package client

import (
	"io"
	"time"
)

// Request statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// Profile is the caller's own account as returned by /auth/me.
type Profile struct {
	UID              string    `json:"uid"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	DisplayName      string    `json:"display_name"`
	OrganizationName string    `json:"organization_name,omitempty"`
	City             string    `json:"city"`
	Area             string    `json:"area"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Verified         bool      `json:"verified"`
	EduCredits       int       `json:"edu_credits"`
	Reputation       float64   `json:"reputation"`
	ProfileCompleted bool      `json:"profile_completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PublicProfile struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	City       string  `json:"city"`
	Area       string  `json:"area"`
	Verified   bool    `json:"verified"`
	Reputation float64 `json:"reputation"`
}

type BootstrapRequest struct {
	Role             string `json:"role,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	City             string `json:"city,omitempty"`
	Area             string `json:"area,omitempty"`
}

type BootstrapResponse struct {
	Created bool    `json:"created"`
	User    Profile `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	City             *string `json:"city,omitempty"`
	Area             *string `json:"area,omitempty"`
}

type RegisterMetadata struct {
	FullName         string `json:"full_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	City             string `json:"city,omitempty"`
	Area             string `json:"area,omitempty"`
}

type RegisterRequest struct {
	Email    string           `json:"email"`
	OTP      string           `json:"otp"`
	Password string           `json:"password"`
	Role     string           `json:"role,omitempty"`
	Metadata RegisterMetadata `json:"metadata"`
}

// TokenResponse carries a custom token to exchange with the identity provider.
type TokenResponse struct {
	CustomToken string `json:"custom_token"`
	UID         string `json:"uid"`
}

type Book struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Subject        string    `json:"subject"`
	ClassLevel     string    `json:"class_level"`
	Board          string    `json:"board"`
	Condition      string    `json:"condition"`
	City           string    `json:"city"`
	Area           string    `json:"area"`
	Description    string    `json:"description"`
	ImageURLs      []string  `json:"image_urls"`
	DonorUID       string    `json:"donor_uid"`
	PickupLocation string    `json:"pickup_location,omitempty"`
	Available      bool      `json:"available"`
	CreatedAt      time.Time `json:"created_at"`
}

type BookSearch struct {
	Subject    string
	ClassLevel string
	Board      string
	Condition  string
	City       string
	Area       string
	Q          string
	Page       int
	PageSize   int
}

type DonateRequest struct {
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	ClassLevel     string `json:"class_level"`
	Board          string `json:"board"`
	Condition      string `json:"condition"`
	City           string `json:"city"`
	Area           string `json:"area"`
	Description    string `json:"description,omitempty"`
	PickupLocation string `json:"pickup_location,omitempty"`
}

type DonateResponse struct {
	BookID    string   `json:"book_id"`
	Slug      string   `json:"slug"`
	ImageURLs []string `json:"image_urls"`
}

type BookRequest struct {
	ID             string     `json:"id"`
	BookID         string     `json:"book_id"`
	BookTitle      string     `json:"book_title"`
	RequesterUID   string     `json:"requester_uid"`
	DonorUID       string     `json:"donor_uid"`
	Status         string     `json:"status"`
	PickupLocation string     `json:"pickup_location"`
	Reason         string     `json:"reason"`
	Quantity       int        `json:"quantity"`
	CreatedAt      time.Time  `json:"created_at"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type CreateBookRequest struct {
	BookID         string `json:"book_id"`
	DonorUID       string `json:"donor_uid,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PickupLocation string `json:"pickup_location,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
}

type CreateBookRequestResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type Transition struct {
	RequestID    string `json:"request_id"`
	Status       string `json:"status"`
	FeedbackPath string `json:"feedback_path,omitempty"`
}

type Chat struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Participants []string  `json:"participants"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderUID string    `json:"sender_uid"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	ClassLevel  string    `json:"class_level"`
	Board       string    `json:"board"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url"`
	OwnerUID    string    `json:"owner_uid"`
	Downloads   int       `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"`
}

type NoteUpload struct {
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	ClassLevel  string `json:"class_level"`
	Board       string `json:"board,omitempty"`
	Description string `json:"description,omitempty"`
}

type BulkRequest struct {
	ID         string    `json:"id"`
	NGOUID     string    `json:"ngo_uid"`
	ClassLevel string    `json:"class_level"`
	Board      string    `json:"board"`
	Subject    string    `json:"subject"`
	Quantity   int       `json:"quantity"`
	Fulfilled  int       `json:"fulfilled"`
	City       string    `json:"city"`
	Area       string    `json:"area"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateBulkRequest struct {
	ClassLevel string `json:"class_level"`
	Board      string `json:"board,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Quantity   int    `json:"quantity"`
	City       string `json:"city,omitempty"`
	Area       string `json:"area,omitempty"`
}

type FeedbackRequest struct {
	RequestID string `json:"request_id"`
	ToUID     string `json:"to_uid,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type FeedbackResult struct {
	Status     string  `json:"status"`
	FeedbackID string  `json:"feedback_id"`
	Reputation float64 `json:"reputation"`
}

type Feedback struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	FromUID   string    `json:"from_uid"`
	ToUID     string    `json:"to_uid"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Impact struct {
	BooksShared               int64   `json:"books_shared"`
	BooksReceived             int64   `json:"books_received"`
	TotalRequestsReceived     int64   `json:"total_requests_received"`
	PendingRequestsReceived   int64   `json:"pending_requests_received"`
	CompletedRequestsReceived int64   `json:"completed_requests_received"`
	TotalReused               int64   `json:"total_reused"`
	EduCredits                int     `json:"edu_credits"`
	MoneySavedINR             float64 `json:"money_saved_inr"`
	PaperSavedKg              float64 `json:"paper_saved_kg"`
	TreesProtected            float64 `json:"trees_protected"`
	CO2SavedKg                float64 `json:"co2_saved_kg"`
}

type CreditTransaction struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	RefID     string    `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreditBalance struct {
	EduCredits   int                 `json:"edu_credits"`
	Transactions []CreditTransaction `json:"transactions"`
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EduCredits int    `json:"edu_credits"`
}

type Address struct {
	City        string `json:"city"`
	Area        string `json:"area"`
	DisplayName string `json:"display_name"`
}

type UserLocation struct {
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	DetectedAddress *Address `json:"detected_address"`
}

type PickupPoint struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Area       string  `json:"area"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

type PickupResult struct {
	UserLocation   UserLocation  `json:"user_location"`
	PickupPoints   []PickupPoint `json:"pickup_points"`
	SearchExpanded bool          `json:"search_expanded"`
}

// PickupSearch holds either City (with optional Area) or Lat/Lon.
type PickupSearch struct {
	City     string
	Area     string
	Lat      *float64
	Lon      *float64
	RadiusKm float64
}

type DistributionEvent struct {
	ID            string    `json:"id"`
	NGOUID        string    `json:"ngo_uid"`
	NGOName       string    `json:"ngo_name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURLs     []string  `json:"image_urls"`
	LikesCount    int       `json:"likes_count"`
	LikedBy       []string  `json:"liked_by"`
	CommentsCount int       `json:"comments_count"`
	Timestamp     time.Time `json:"timestamp"`
}

type DistributionPost struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DistributionComment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserUID   string    `json:"user_uid"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID *string   `json:"related_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload is a file to send with a multipart call.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
