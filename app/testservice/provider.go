package testservice

import (
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/http/validation"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Provider registers Test as a singleton and Service per container, then
// mounts the routes at boot.
//
//	application.Register(&testservice.Provider{})
type Provider struct {
	container.BaseProvider
}

func (p *Provider) Register(app *container.Container) error {
	if _, err := app.Constructor(NewTest, container.WithName("test")); err != nil {
		return err
	}
	_, err := app.Constructor(NewService,
		container.WithScope(container.ContainerScope),
		container.WithName("testservice"),
	)
	return err
}

func (p *Provider) Boot(app *container.Container) error {
	router, err := container.Resolve[*routing.Router](app)
	if err != nil {
		return err
	}
	factory, err := container.Resolve[*validation.Factory](app)
	if err != nil {
		return err
	}

	ctrl := NewController(factory)
	router.Get("/data/{value}", ctrl.GetData)
	router.Post("/data", ctrl.GetDataUsingDataContract)
	return nil
}
