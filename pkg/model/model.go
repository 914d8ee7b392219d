// Package model defines the records stored in the single course table
// and the key conventions addressing them.
//
// Every record is identified by (pk, sk). Key layout:
//
//	Course:     pk=COURSE#<courseId>  sk=META
//	Enrollment: pk=COURSE#<courseId>  sk=USER#<userId>   (+ GSI1 mirror)
//	Thread:     pk=THREAD#<threadId>  sk=META            (+ GSI2 mirror)
//	Message:    pk=THREAD#<threadId>  sk=MSG#<millis>
//	Video:      pk=COURSE#<courseId>  sk=VIDEO#<videoId>
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity type discriminators stored in the "type" attribute.
const (
	TypeCourse     = "COURSE"
	TypeEnrollment = "ENROLLMENT"
	TypeThread     = "THREAD"
	TypeMessage    = "MESSAGE"
	TypeVideo      = "VIDEO"
)

// Key prefixes and sentinels.
const (
	PrefixCourse = "COURSE#"
	PrefixThread = "THREAD#"
	PrefixUser   = "USER#"
	PrefixMsg    = "MSG#"
	PrefixVideo  = "VIDEO#"
	SKMeta       = "META"
)

// Course is the metadata record for a course. Courses are created by
// TEACHER-role users and are immutable afterwards.
type Course struct {
	PK          string    `json:"pk" dynamodbav:"pk"`
	SK          string    `json:"sk" dynamodbav:"sk"`
	Type        string    `json:"type" dynamodbav:"type"`
	CourseID    string    `json:"courseId" dynamodbav:"courseId"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	TeacherID   string    `json:"teacherId,omitempty" dynamodbav:"teacherId"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Enrollment is the join record authorizing a user to access a course's
// resources. One record per (course, user); re-enrollment overwrites.
// The GSI1 mirror enables "courses a user belongs to" lookups.
type Enrollment struct {
	PK        string    `json:"pk" dynamodbav:"pk"`
	SK        string    `json:"sk" dynamodbav:"sk"`
	Type      string    `json:"type" dynamodbav:"type"`
	UserID    string    `json:"userId" dynamodbav:"userId"`
	CourseID  string    `json:"courseId" dynamodbav:"courseId"`
	Role      string    `json:"role" dynamodbav:"role"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	GSI1PK    string    `json:"gsi1pk" dynamodbav:"gsi1pk"`
	GSI1SK    string    `json:"gsi1sk" dynamodbav:"gsi1sk"`
}

// Thread is a discussion thread inside a course. Its courseId is
// immutable once set; message visibility is always gated by it.
// The GSI2 mirror enables "threads in a course" lookups.
type Thread struct {
	PK        string    `json:"pk" dynamodbav:"pk"`
	SK        string    `json:"sk" dynamodbav:"sk"`
	Type      string    `json:"type" dynamodbav:"type"`
	ThreadID  string    `json:"threadId" dynamodbav:"threadId"`
	CourseID  string    `json:"courseId" dynamodbav:"courseId"`
	Title     string    `json:"title" dynamodbav:"title"`
	CreatedBy string    `json:"createdBy,omitempty" dynamodbav:"createdBy"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	GSI2PK    string    `json:"gsi2pk" dynamodbav:"gsi2pk"`
	GSI2SK    string    `json:"gsi2sk" dynamodbav:"gsi2sk"`
}

// Message is a single post inside a thread. The sort key carries the
// creation timestamp in milliseconds, which gives chronological order
// within the thread partition.
type Message struct {
	PK        string    `json:"pk" dynamodbav:"pk"`
	SK        string    `json:"sk" dynamodbav:"sk"`
	Type      string    `json:"type" dynamodbav:"type"`
	ThreadID  string    `json:"threadId" dynamodbav:"threadId"`
	SenderID  string    `json:"senderId,omitempty" dynamodbav:"senderId"`
	Body      string    `json:"body" dynamodbav:"body"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Video is the metadata record for an uploaded course video. The object
// itself lives in S3 under S3Key; this record is written by a separate
// call after the client-side upload.
type Video struct {
	PK        string    `json:"pk" dynamodbav:"pk"`
	SK        string    `json:"sk" dynamodbav:"sk"`
	Type      string    `json:"type" dynamodbav:"type"`
	VideoID   string    `json:"videoId" dynamodbav:"videoId"`
	CourseID  string    `json:"courseId" dynamodbav:"courseId"`
	Title     string    `json:"title" dynamodbav:"title"`
	S3Key     string    `json:"s3Key" dynamodbav:"s3Key"`
	CreatedBy string    `json:"createdBy,omitempty" dynamodbav:"createdBy"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// NewID generates a collision-resistant identifier with a readable
// entity prefix, e.g. "course_3b1f...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// CourseKey returns the primary key of a course metadata record.
func CourseKey(courseID string) (pk, sk string) {
	return PrefixCourse + courseID, SKMeta
}

// EnrollmentKey returns the primary key of an enrollment record.
func EnrollmentKey(courseID, userID string) (pk, sk string) {
	return PrefixCourse + courseID, PrefixUser + userID
}

// ThreadKey returns the primary key of a thread metadata record.
func ThreadKey(threadID string) (pk, sk string) {
	return PrefixThread + threadID, SKMeta
}

// MessageSK returns the sort key for a message created at t.
func MessageSK(t time.Time) string {
	return fmt.Sprintf("%s%d", PrefixMsg, t.UnixMilli())
}

// VideoKey returns the primary key of a video metadata record.
func VideoKey(courseID, videoID string) (pk, sk string) {
	return PrefixCourse + courseID, PrefixVideo + videoID
}
