// Package catalog holds the static node-type catalog served to clients
// and the starter routines seeded for every new user. Keep the contents
// in sync with the frontend constants; bump Version to bust client
// caches when anything here changes.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/magolabs/aimaster/internal/model"
)

const Version = "2025-01-01"

var NodeTypes = []string{
	"Iniciar",
	"Capturar Imagen",
	"Conversación",
	"Encontrar una Carta",
	"Carta al Número",
	"Pesar Cartas",
	"Coincidencia Absoluta",
	"Códigos Secretos",
}

var NodeInfo = map[string]string{
	"Iniciar": "Configura el primer mensaje...",
}

var DefaultNodeConfig = map[string]map[string]string{
	"Iniciar": {
		"startMessage": "Estoy listo para hacer magia.",
		"personality":  "Sé muy sarcástico.",
	},
}

// Config is the payload of the public configuration endpoint.
type Config struct {
	NodeTypes         []string                     `json:"node_types"`
	NodeInfo          map[string]string            `json:"node_info"`
	DefaultNodeConfig map[string]map[string]string `json:"default_node_config"`
	Version           string                       `json:"version"`
}

func AppConfig() Config {
	return Config{
		NodeTypes:         NodeTypes,
		NodeInfo:          NodeInfo,
		DefaultNodeConfig: DefaultNodeConfig,
		Version:           Version,
	}
}

// StarterRoutine describes a routine created for each new user at
// registration.
type StarterRoutine struct {
	Name  string
	Stack string
	Nodes model.NodeList
}

func StarterRoutines() []StarterRoutine {
	return []StarterRoutine{
		{
			Name:  "Magia de Cerca con Cartas",
			Stack: "Orden1",
			Nodes: mustNodes(`[
				{"id":"n1","type":"Iniciar","config":{"startMessage":"Estoy listo para hacer magia.","personality":"Sé muy sarcástico. Actúa como un ser superior al humano."}},
				{"id":"n2","type":"Encontrar una Carta","config":{"invertCount":false,"response":"La carta que buscas, el {carta}, creo que la encontrarás si cuentas {posicion} cartas."}},
				{"id":"n3","type":"Pesar Cartas","config":{"invertCount":false,"response":"Soy omnipresente, siento 34 gramos, es decir {cantidad} cartas."}},
				{"id":"n4","type":"Coincidencia Absoluta","config":{"revealIntro":"Observa a tu alrededor, la respuesta está en todas partes..."}}
			]`),
		},
		{
			Name:  "Camareando",
			Stack: "Orden2",
			Nodes: mustNodes(`[
				{"id":"n7","type":"Iniciar","config":{"startMessage":"Estoy lista para hacer magia!","personality":"Sé muy sarcástico. Actúa como un ser superior al humano."}},
				{"id":"n8","type":"Capturar Imagen","config":{"instructions":"Es elemental saber que ibas a sacar una carta de {palo}.","cameraType":"front"}},
				{"id":"n9","type":"Capturar Imagen","config":{"instructions":"No entienden que soy superior? una carta no es desafío. sacaron {carta}.","cameraType":"front"}},
				{"id":"n10","type":"Capturar Imagen","config":{"instructions":"Tienes que crear una imagen de poster de pelicula que se adecué a la descripción, donde se le indicará quién, dónde, y haciendo qué. Cree la foto y responda con algo similar a: \"No solo puedo imaginar una escena, te hago el poster de la película y todo.\"","cameraType":"front"}}
			]`),
		},
	}
}

func mustNodes(src string) model.NodeList {
	var nodes model.NodeList
	if err := json.Unmarshal([]byte(src), &nodes); err != nil {
		panic(fmt.Sprintf("catalog: bad starter nodes: %v", err))
	}
	return nodes
}
