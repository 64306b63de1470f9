package service

import "errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrNotOwner           = errors.New("you are not the owner of this project")
	ErrNoAccess           = errors.New("you do not have access to this project")
	ErrAlreadyOwner       = errors.New("you already own this project")
	ErrAlreadyMember      = errors.New("you are already a member of this project")
	ErrNotMember          = errors.New("user is not a member of this project")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique share code")
	ErrRotationDisabled   = errors.New("share code rotation is disabled")
	ErrNameTaken          = errors.New("you already have a project with this name")
)
