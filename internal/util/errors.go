package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizNotPublished     = errors.New("quiz not published or not accessible")
	ErrQuizAlreadySubmitted = errors.New("quiz already submitted")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrEmptyQuiz            = errors.New("quiz has no questions")
)
