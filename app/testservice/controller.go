package testservice

import (
	"net/http"
	"strconv"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/http/validation"
)

// Controller exposes Service over HTTP.
type Controller struct {
	app.Controller
	validator *validation.Factory
}

// NewController builds a Controller validating input with factory.
func NewController(factory *validation.Factory) *Controller {
	return &Controller{validator: factory}
}

// GetData handles GET /data/{value}.
func (c *Controller) GetData(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)

	v := c.validator.Make(req.RouteParams(), validation.Rules{"value": "required|integer"})
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}
	value, err := strconv.Atoi(req.RouteParam("value"))
	if err != nil {
		res.Error(http.StatusUnprocessableEntity, "The value is out of range.")
		return
	}

	svc, ok := c.service(w, r)
	if !ok {
		return
	}
	res.Success(map[string]any{"result": svc.GetData(value)})
}

// GetDataUsingDataContract handles POST /data.
func (c *Controller) GetDataUsingDataContract(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)

	var body CompositeType
	if err := req.Bind(&body); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	svc, ok := c.service(w, r)
	if !ok {
		return
	}
	res.Success(svc.GetDataUsingDataContract(body))
}

func (c *Controller) service(w http.ResponseWriter, r *http.Request) (*Service, bool) {
	res := c.Response(w)
	scope := c.Request(r).Container()
	if scope == nil {
		res.ServerError("No request scope.")
		return nil, false
	}
	svc, err := container.Resolve[*Service](scope)
	if err != nil {
		res.ContainerError(err)
		return nil, false
	}
	return svc, true
}
