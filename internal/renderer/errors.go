package renderer

import "errors"

// ErrUnknownDomain для направления стажировки нет шаблона письма.
var ErrUnknownDomain = errors.New("no template for domain")
