package httpapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"chainapi/internal/application"
	"chainapi/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type addressFromSeedRequest struct {
	SeedPhrase string `json:"seedPhrase" validate:"required"`
}

type deployWalletRequest struct {
	Owners        []string `json:"owners" validate:"required,min=1,dive,eth_addr"`
	Confirmations uint64   `json:"confirmations" validate:"required"`
}

type submitRequest struct {
	ContractAddress string `json:"contractAddress" validate:"required,eth_addr"`
	Destination     string `json:"destination" validate:"omitempty,eth_addr"`
	Value           string `json:"value" validate:"omitempty,numeric"`
	Data            string `json:"data" validate:"omitempty,startswith=0x"`
}

type indexRequest struct {
	ContractAddress string  `json:"contractAddress" validate:"required,eth_addr"`
	Index           *uint64 `json:"index" validate:"required"`
}

type executeRequest struct {
	ContractAddress string  `json:"contractAddress" validate:"required,eth_addr"`
	Index           *uint64 `json:"index" validate:"required"`
	IsDeploy        bool    `json:"isDeploy"`
}

type depositRequest struct {
	ContractAddress string `json:"contractAddress" validate:"required,eth_addr"`
	Value           string `json:"value" validate:"required"`
}

type deployLicenseRequest struct {
	MultiSigWallet string   `json:"multiSigWallet" validate:"required,eth_addr"`
	Owners         []string `json:"owners" validate:"required,min=1,dive,eth_addr"`
	Shares         []uint64 `json:"shares" validate:"required,min=1,dive,gt=0"`
	PayrollAddress string   `json:"payrollAddress" validate:"required,eth_addr"`
}

type licenseRequest struct {
	ContractAddress string `json:"contractAddress" validate:"required,eth_addr"`
	MultiSigWallet  string `json:"multiSigWallet" validate:"required,eth_addr"`
}

type deploySalaryRequest struct {
	AuthorizedWallet string `json:"authorizedWallet" validate:"required,eth_addr"`
}

// decodeJSON reads the body into dst and runs its validation tags. Every
// failure is a validation error.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.Invalid("%v", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			messages = append(messages, fe.Namespace()+" failed "+fe.Tag()+"="+fe.Param())
			continue
		}
		messages = append(messages, fe.Namespace()+" failed "+fe.Tag())
	}
	return domain.Invalid("%s", strings.Join(messages, "; "))
}

func seedFrom(r *http.Request) (string, error) {
	seed := strings.TrimSpace(r.Header.Get(seedHeader))
	if seed == "" {
		return "", domain.Invalid("%s header is required", seedHeader)
	}
	return seed, nil
}

func parseUintParam(raw, name string) (uint64, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.Invalid("invalid %s %q", name, raw)
	}
	return value, nil
}

func parseBlockRange(r *http.Request) (*uint64, *uint64, error) {
	var bounds [2]*uint64
	for i, key := range []string{"from_block", "to_block"} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		value, err := parseUintParam(raw, key)
		if err != nil {
			return nil, nil, err
		}
		bounds[i] = &value
	}
	return bounds[0], bounds[1], nil
}

func parseJournalFilter(r *http.Request) (application.JournalQueryFilter, error) {
	query := r.URL.Query()
	filter := application.JournalQueryFilter{
		Contract: strings.TrimSpace(query.Get("contract")),
		Sender:   strings.TrimSpace(query.Get("sender")),
		Method:   strings.TrimSpace(query.Get("method")),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return application.JournalQueryFilter{}, domain.Invalid("invalid limit %q", raw)
		}
		filter.Limit = limit
	}
	return filter, nil
}
