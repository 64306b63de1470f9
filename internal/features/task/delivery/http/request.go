package http

import (
	"encoding/json"
	"time"
)

// optionalTime distinguishes an absent field from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type createRequest struct {
	Title       string     `json:"title" binding:"required" example:"Buy milk"`
	Description string     `json:"description" example:""`
	Priority    string     `json:"priority" example:"MEDIUM" enums:"LOW,MEDIUM,HIGH"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *int64     `json:"categoryId" example:"1"`
}

// updateRequest: null in dueDate or categoryId clears the field.
type updateRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Priority    *string      `json:"priority" enums:"LOW,MEDIUM,HIGH"`
	DueDate     optionalTime `json:"dueDate" swaggertype:"string" format:"date-time"`
	CategoryID  optionalID   `json:"categoryId" swaggertype:"integer"`
	Completed   *bool        `json:"completed"`
}
